package models

import (
	"strings"
	"time"
)

// Fulfillment statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
)

// Payment statuses.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// OrderStatuses lists the fulfillment statuses in workflow order.
var OrderStatuses = []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

// ValidOrderStatus reports whether s is one of the fulfillment statuses.
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidPaymentStatus reports whether s is one of the payment statuses.
func ValidPaymentStatus(s string) bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentFailed
}

// OrderItem is a line item. Name and Price are captured at order time.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	OrderID   string  `json:"-" gorm:"index;type:varchar(36)"`
	ProductID *string `json:"productId" gorm:"type:varchar(36)"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity" gorm:"default:1"`
}

// ShippingAddress is where an order ships to.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Order represents a customer order.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          *string         `json:"userId" gorm:"index;type:varchar(36)"`
	Email           string          `json:"email" gorm:"type:varchar(255)"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	TotalAmount     float64         `json:"totalAmount"`
	PaymentStatus   string          `json:"paymentStatus" gorm:"index;type:varchar(16);default:pending"`
	Status          string          `json:"status" gorm:"index;type:varchar(16);default:pending"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderNumber derives the human-readable order number from an order id:
// "ORD-" followed by the id's last eight characters, uppercased.
func OrderNumber(id string) string {
	tail := id
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	return "ORD-" + strings.ToUpper(tail)
}
