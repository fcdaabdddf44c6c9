package shipping

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrMethodNotFound means the referenced shipping method does not exist.
	ErrMethodNotFound = errors.New("shipping method not found")
	// ErrMethodInactive means the method exists but is disabled.
	ErrMethodInactive = errors.New("shipping method is inactive")
)

// Service defines shipping method validation and rate calculation.
type Service interface {
	// GetMethod retrieves a method by id, ErrMethodNotFound when absent.
	GetMethod(ctx context.Context, id int64) (*Method, error)

	// ValidateMethod checks that a method exists and is active.
	ValidateMethod(ctx context.Context, id int64) error

	// CalculateRate quotes the cost of shipping with one method.
	CalculateRate(ctx context.Context, methodID int64, subtotal, weight float64) (float64, error)

	// ActiveMethods lists every method currently offered.
	ActiveMethods(ctx context.Context) ([]*Method, error)

	// CalculateAllRates quotes every active method for a subtotal and weight.
	CalculateAllRates(ctx context.Context, subtotal, weight float64) ([]*RateQuote, error)

	// CheapestOption returns the lowest quote among active methods.
	CheapestOption(ctx context.Context, subtotal, weight float64) (*RateQuote, error)
}

type service struct {
	repo Repository
}

// NewService creates a new shipping service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetMethod(ctx context.Context, id int64) (*Method, error) {
	m, err := s.repo.GetMethodByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("method %d: %w", id, ErrMethodNotFound)
	}
	return m, nil
}

func (s *service) ValidateMethod(ctx context.Context, id int64) error {
	m, err := s.GetMethod(ctx, id)
	if err != nil {
		return err
	}
	if !m.IsActive {
		return fmt.Errorf("method %d: %w", id, ErrMethodInactive)
	}
	return nil
}

func (s *service) CalculateRate(ctx context.Context, methodID int64, subtotal, weight float64) (float64, error) {
	m, err := s.GetMethod(ctx, methodID)
	if err != nil {
		return 0, err
	}
	return rateFor(m, subtotal, weight), nil
}

func (s *service) ActiveMethods(ctx context.Context) ([]*Method, error) {
	return s.repo.ListActiveMethods(ctx)
}

func (s *service) CalculateAllRates(ctx context.Context, subtotal, weight float64) ([]*RateQuote, error) {
	methods, err := s.repo.ListActiveMethods(ctx)
	if err != nil {
		return nil, err
	}
	quotes := make([]*RateQuote, 0, len(methods))
	for _, m := range methods {
		quotes = append(quotes, &RateQuote{
			MethodID:       m.ID,
			MethodName:     m.Name,
			CalculatedRate: rateFor(m, subtotal, weight),
			EstimatedDays:  m.EstimatedDays,
		})
	}
	return quotes, nil
}

func (s *service) CheapestOption(ctx context.Context, subtotal, weight float64) (*RateQuote, error) {
	quotes, err := s.CalculateAllRates(ctx, subtotal, weight)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, ErrMethodNotFound
	}
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].CalculatedRate < quotes[j].CalculatedRate
	})
	return quotes[0], nil
}

// rateFor applies the method's pricing rule to a subtotal and weight.
func rateFor(m *Method, subtotal, weight float64) float64 {
	if m.FreeOver != nil && subtotal >= *m.FreeOver {
		return 0
	}
	if weight < 0 {
		weight = 0
	}
	return round2(m.BaseRate + m.PerKgRate*weight)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
