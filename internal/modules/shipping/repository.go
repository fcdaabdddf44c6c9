package shipping

import "context"

// Repository defines data access for shipping methods.
type Repository interface {
	// GetMethodByID retrieves a shipping method, nil when absent.
	GetMethodByID(ctx context.Context, id int64) (*Method, error)

	// ListActiveMethods returns every active shipping method.
	ListActiveMethods(ctx context.Context) ([]*Method, error)
}
