package repositories

import (
	"context"
	"fmt"

	"hetave/internal/apperr"
	"hetave/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository. Line items
// live in their own table and are preloaded with the order.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func applyOrderFilter(q *gorm.DB, filter OrderFilter) *gorm.DB {
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	return q
}

// List returns matching orders with their items, newest first.
func (r *GORMOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	q := applyOrderFilter(r.db.WithContext(ctx).Model(&models.Order{}), filter)
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, storeError(err, "orders")
	}
	return orders, nil
}

// GetByID returns an order with its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, storeError(err, fmt.Sprintf("order with ID %s", id))
	}
	return &order, nil
}

// Create persists the order and its items in one transaction.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		return storeError(err, "order")
	}
	return nil
}

// UpdateStatus overwrites the fulfillment status of an order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return storeError(res.Error, "order")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("order with ID %s not found for status update", id)
	}
	return nil
}

// Count returns the number of orders matching filter.
func (r *GORMOrderRepository) Count(ctx context.Context, filter OrderFilter) (int64, error) {
	var n int64
	q := applyOrderFilter(r.db.WithContext(ctx).Model(&models.Order{}), filter)
	if err := q.Count(&n).Error; err != nil {
		return 0, storeError(err, "orders")
	}
	return n, nil
}
