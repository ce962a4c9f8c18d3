package repositories

import (
	"context"

	"hetave/internal/models"
)

// OrderFilter narrows an order listing. Empty fields do not filter.
type OrderFilter struct {
	Status        string
	PaymentStatus string
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, status string) error
	Count(ctx context.Context, filter OrderFilter) (int64, error)
}
