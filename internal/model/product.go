package model

import "github.com/google/uuid"

type Product struct {
	BaseModel
	Name           string        `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category       string        `gorm:"type:varchar(255);not null" json:"category" validate:"required"`
	WholesalePrice float64       `gorm:"not null" json:"wholesalePrice" validate:"min=0"`
	RetailPrice    float64       `gorm:"not null" json:"retailPrice" validate:"min=0"`
	Sizes          []ProductSize `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"sizes" validate:"required,min=1,dive"`

	// Optional fields
	Description string  `json:"description"`
	Brand       string  `gorm:"type:varchar(255)" json:"brand"`
	Barcode     string  `gorm:"type:varchar(100)" json:"barcode"`
	HsnSac      string  `gorm:"type:varchar(20)" json:"hsnSac"`
	GST         float64 `json:"gst" validate:"min=0"` // percent, tax-inclusive pricing
}

// ProductSize holds the stock level of one size variant.
// Size labels are not constrained unique per product; merge and stock
// updates operate on the first matching row.
type ProductSize struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Size      string    `gorm:"type:varchar(50);not null" json:"size" validate:"required"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity" validate:"min=0"`
}

// TotalQuantity sums the stock across all sizes.
func (p *Product) TotalQuantity() int {
	total := 0
	for _, s := range p.Sizes {
		total += s.Quantity
	}
	return total
}

// FindSize returns the first size entry matching the given label.
func (p *Product) FindSize(size string) *ProductSize {
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			return &p.Sizes[i]
		}
	}
	return nil
}
