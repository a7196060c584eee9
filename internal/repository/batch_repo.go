package repository

import (
	"errors"

	"go-retail-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BatchRepository interface {
	Create(batch *model.UploadBatch) error
	FindByID(id uuid.UUID) (*model.UploadBatch, error)
	FindByHash(fileHash string) (*model.UploadBatch, error)
	FindAll() ([]model.UploadBatch, error)
	Delete(id uuid.UUID) error
}

type batchRepo struct {
	db *gorm.DB
}

func NewBatchRepo(db *gorm.DB) BatchRepository {
	return &batchRepo{db}
}

func (r *batchRepo) Create(batch *model.UploadBatch) error {
	return r.db.Create(batch).Error
}

func (r *batchRepo) FindByID(id uuid.UUID) (*model.UploadBatch, error) {
	var batch model.UploadBatch
	err := r.db.Preload("QuantityChanges", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC") // restore in recorded order
	}).First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepo) FindByHash(fileHash string) (*model.UploadBatch, error) {
	var batch model.UploadBatch
	err := r.db.First(&batch, "file_hash = ?", fileHash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepo) FindAll() ([]model.UploadBatch, error) {
	var batches []model.UploadBatch
	err := r.db.Preload("QuantityChanges").Order("uploaded_at DESC").Find(&batches).Error
	return batches, err
}

func (r *batchRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", id).Delete(&model.QuantityChange{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.UploadBatch{}, "id = ?", id).Error
	})
}
