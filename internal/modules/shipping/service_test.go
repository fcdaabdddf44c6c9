package shipping

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	methods map[int64]*Method
	active  []*Method
}

func (r *stubRepo) GetMethodByID(_ context.Context, id int64) (*Method, error) {
	return r.methods[id], nil
}

func (r *stubRepo) ListActiveMethods(context.Context) ([]*Method, error) {
	return r.active, nil
}

func floatp(v float64) *float64 { return &v }

func standardMethod() *Method {
	return &Method{
		ID: 1, Name: "Standard", Code: "STD",
		BaseRate: 5.00, PerKgRate: 1.50, EstimatedDays: 5, IsActive: true,
	}
}

func TestValidateMethod(t *testing.T) {
	inactive := standardMethod()
	inactive.ID = 2
	inactive.IsActive = false
	svc := NewService(&stubRepo{methods: map[int64]*Method{1: standardMethod(), 2: inactive}})

	assert.NoError(t, svc.ValidateMethod(context.Background(), 1))

	err := svc.ValidateMethod(context.Background(), 2)
	assert.ErrorIs(t, err, ErrMethodInactive)

	err = svc.ValidateMethod(context.Background(), 404)
	assert.ErrorIs(t, err, ErrMethodNotFound)
}

func TestCalculateRate(t *testing.T) {
	m := standardMethod()
	m.FreeOver = floatp(100.00)
	svc := NewService(&stubRepo{methods: map[int64]*Method{1: m}})

	tests := []struct {
		name     string
		subtotal float64
		weight   float64
		want     float64
	}{
		{"base plus per-kg", 50.00, 2.0, 8.00},
		{"fractional weight rounds to cents", 50.00, 1.234, 6.85},
		{"negative weight treated as zero", 50.00, -1.0, 5.00},
		{"free over threshold reached", 100.00, 2.0, 0.00},
		{"free over threshold exceeded", 250.00, 10.0, 0.00},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rate, err := svc.CalculateRate(context.Background(), 1, tc.subtotal, tc.weight)
			require.NoError(t, err)
			assert.Equal(t, tc.want, rate)
		})
	}
}

func TestCalculateRate_UnknownMethod(t *testing.T) {
	svc := NewService(&stubRepo{methods: map[int64]*Method{}})
	_, err := svc.CalculateRate(context.Background(), 9, 50.00, 1.0)
	assert.ErrorIs(t, err, ErrMethodNotFound)
}

func TestCheapestOption(t *testing.T) {
	express := &Method{ID: 2, Name: "Express", BaseRate: 15.00, PerKgRate: 3.00, EstimatedDays: 1, IsActive: true}
	economy := &Method{ID: 3, Name: "Economy", BaseRate: 3.00, PerKgRate: 1.00, EstimatedDays: 10, IsActive: true}
	svc := NewService(&stubRepo{active: []*Method{express, standardMethod(), economy}})

	quote, err := svc.CheapestOption(context.Background(), 50.00, 2.0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), quote.MethodID)
	assert.Equal(t, 5.00, quote.CalculatedRate)
}

func TestCheapestOption_NoActiveMethods(t *testing.T) {
	svc := NewService(&stubRepo{})
	_, err := svc.CheapestOption(context.Background(), 50.00, 2.0)
	assert.True(t, errors.Is(err, ErrMethodNotFound))
}

func TestCalculateAllRates(t *testing.T) {
	free := standardMethod()
	free.ID = 4
	free.FreeOver = floatp(40.00)
	svc := NewService(&stubRepo{active: []*Method{standardMethod(), free}})

	quotes, err := svc.CalculateAllRates(context.Background(), 50.00, 2.0)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, 8.00, quotes[0].CalculatedRate)
	assert.Equal(t, 0.00, quotes[1].CalculatedRate)
}
