package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadBatch records one bulk import so it can be reversed later.
// A given file hash maps to at most one live batch; the row is removed
// by rollback, so deletion here is hard (no soft delete) to free the
// fingerprint for re-import.
type UploadBatch struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"uploadId"`
	FileName        string           `gorm:"type:varchar(255);not null" json:"fileName"`
	FileHash        string           `gorm:"type:varchar(32);uniqueIndex;not null" json:"fileHash"`
	ProductIDs      []string         `gorm:"serializer:json" json:"productIds"` // products inserted by this import
	QuantityChanges []QuantityChange `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE" json:"quantityChanges"`
	UploadedAt      time.Time        `json:"uploadedAt"`
}

// QuantityChange is a before/after snapshot of one size quantity bumped
// by an import. Rollback restores OldQuantity in recorded order.
type QuantityChange struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	BatchID     uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null" json:"productId"`
	Size        string    `gorm:"type:varchar(50);not null" json:"size"`
	OldQuantity int       `gorm:"not null" json:"oldQuantity"`
	NewQuantity int       `gorm:"not null" json:"newQuantity"`
}

func (b *UploadBatch) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.UploadedAt.IsZero() {
		b.UploadedAt = time.Now()
	}
	return
}
