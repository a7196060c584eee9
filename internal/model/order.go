package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentUPI  PaymentMethod = "UPI"
)

// Order is never hard-deleted; cancellation is a terminal status change
// that restores the deducted stock.
type Order struct {
	BaseModel
	Date   time.Time   `gorm:"not null" json:"date"`
	Items  []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items" validate:"required,min=1,dive"`
	Total  float64     `gorm:"not null" json:"total"`
	Profit float64     `gorm:"not null" json:"profit"`

	CustomerPhone string        `gorm:"type:varchar(20)" json:"customerPhone"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(10);default:'PENDING'" json:"paymentStatus" validate:"omitempty,oneof=PENDING PAID CANCELLED"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(10);default:'CASH'" json:"paymentMethod" validate:"omitempty,oneof=CASH UPI"`
	Discount      float64       `gorm:"default:0" json:"discount" validate:"min=0"`
	Notes         string        `json:"notes"`
}

// ItemsTotal sums the line subtotals before discount.
func (o *Order) ItemsTotal() float64 {
	sum := 0.0
	for _, it := range o.Items {
		sum += it.Subtotal
	}
	return sum
}

type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product" validate:"uuid_required"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"productDetails,omitempty" validate:"-"`
	Size      string    `gorm:"type:varchar(50);not null" json:"size" validate:"required"`
	Qty       int       `gorm:"not null" json:"qty" validate:"required,gt=0"`
	Price     float64   `gorm:"not null" json:"price" validate:"min=0"` // unit retail price at order time
	Subtotal  float64   `gorm:"not null" json:"subtotal"`               // qty * price
}
