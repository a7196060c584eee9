package service

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go-retail-backoffice/internal/model"
	"go-retail-backoffice/internal/repository"
	"go-retail-backoffice/internal/ws"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ImportResult reports one accepted bulk import.
type ImportResult struct {
	UploadID uuid.UUID `json:"uploadId"`
	Inserted int       `json:"inserted"`
	Updated  int       `json:"updated"`
}

// RollbackResult summarizes an applied rollback.
type RollbackResult struct {
	Message  string `json:"message"`
	FileName string `json:"fileName"`
}

type ImportService interface {
	// ImportProducts ingests a spreadsheet payload. Import is idempotent by
	// content: a payload whose fingerprint already has a live batch is
	// rejected with *DuplicateUploadError and nothing is mutated.
	ImportProducts(fileName string, payload []byte) (*ImportResult, error)
	RollbackBatch(id uuid.UUID) (*RollbackResult, error)
	ListBatches() ([]model.UploadBatch, error)
}

type importService struct {
	productRepo repository.ProductRepository
	batchRepo   repository.BatchRepository
	wsHub       *ws.Hub
}

func NewImportService(productRepo repository.ProductRepository, batchRepo repository.BatchRepository, hub *ws.Hub) ImportService {
	return &importService{
		productRepo: productRepo,
		batchRepo:   batchRepo,
		wsHub:       hub,
	}
}

// importRow is one parsed spreadsheet line; rows sharing (name, category,
// brand) fold into size entries of a single logical product.
type importRow struct {
	Name           string
	Category       string
	Brand          string
	WholesalePrice float64
	RetailPrice    float64
	Description    string
	Barcode        string
	Size           string
	Quantity       int
}

func parseSheet(payload []byte) ([]importRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable spreadsheet", ErrValidation)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet contains no sheets", ErrValidation)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable spreadsheet", ErrValidation)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: spreadsheet has no data rows", ErrValidation)
	}

	// Header row maps column names to indexes.
	col := map[string]int{}
	for i, name := range rows[0] {
		col[name] = i
	}
	cell := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	var parsed []importRow
	for _, row := range rows[1:] {
		r := importRow{
			Name:        cell(row, "name"),
			Category:    cell(row, "category"),
			Brand:       cell(row, "brand"),
			Description: cell(row, "description"),
			Barcode:     cell(row, "barcode"),
			Size:        cell(row, "size"),
		}
		if r.Name == "" || r.Size == "" {
			continue
		}
		r.WholesalePrice, _ = strconv.ParseFloat(cell(row, "wholesalePrice"), 64)
		r.RetailPrice, _ = strconv.ParseFloat(cell(row, "retailPrice"), 64)
		r.Quantity, _ = strconv.Atoi(cell(row, "quantity"))
		parsed = append(parsed, r)
	}
	return parsed, nil
}

// groupRows folds rows into products keyed by (name, category, brand),
// preserving first-seen order.
func groupRows(rows []importRow) []*model.Product {
	index := map[string]*model.Product{}
	var grouped []*model.Product
	for _, r := range rows {
		key := r.Name + "|" + r.Category + "|" + r.Brand
		p, ok := index[key]
		if !ok {
			p = &model.Product{
				Name:           r.Name,
				Category:       r.Category,
				Brand:          r.Brand,
				WholesalePrice: r.WholesalePrice,
				RetailPrice:    r.RetailPrice,
				Description:    r.Description,
				Barcode:        r.Barcode,
			}
			index[key] = p
			grouped = append(grouped, p)
		}
		p.Sizes = append(p.Sizes, model.ProductSize{Size: r.Size, Quantity: r.Quantity})
	}
	return grouped
}

func fingerprint(payload []byte) string {
	sum := md5.Sum(payload)
	return hex.EncodeToString(sum[:])
}

func (s *importService) ImportProducts(fileName string, payload []byte) (*ImportResult, error) {
	fileHash := fingerprint(payload)

	if existing, err := s.batchRepo.FindByHash(fileHash); err == nil {
		return nil, &DuplicateUploadError{
			UploadID:   existing.ID.String(),
			UploadedAt: existing.UploadedAt.Format(time.RFC3339),
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	rows, err := parseSheet(payload)
	if err != nil {
		return nil, err
	}

	var insertedIDs []string
	var changes []model.QuantityChange

	// Each grouped product commits independently; a failure part-way leaves
	// the earlier groups applied and no batch row recorded. Rolling the
	// batch forward again after fixing the payload is the recovery path.
	for _, incoming := range groupRows(rows) {
		existing, err := s.productRepo.FindByKey(incoming.Name, incoming.Category, incoming.Brand)
		switch {
		case err == nil:
			for _, newSize := range incoming.Sizes {
				if current := existing.FindSize(newSize.Size); current != nil {
					changes = append(changes, model.QuantityChange{
						ProductID:   existing.ID,
						Size:        newSize.Size,
						OldQuantity: current.Quantity,
						NewQuantity: current.Quantity + newSize.Quantity,
					})
					current.Quantity += newSize.Quantity
				} else {
					// New size on an existing product: appended without a
					// change record, so only new-product rollback removes it.
					existing.Sizes = append(existing.Sizes, model.ProductSize{
						Size:     newSize.Size,
						Quantity: newSize.Quantity,
					})
				}
			}
			if err := s.productRepo.Update(existing); err != nil {
				return nil, err
			}
		case errors.Is(err, repository.ErrNotFound):
			if err := s.productRepo.Create(incoming); err != nil {
				return nil, err
			}
			insertedIDs = append(insertedIDs, incoming.ID.String())
		default:
			return nil, err
		}
	}

	batch := &model.UploadBatch{
		FileName:        fileName,
		FileHash:        fileHash,
		ProductIDs:      insertedIDs,
		QuantityChanges: changes,
	}
	if err := s.batchRepo.Create(batch); err != nil {
		return nil, err
	}

	s.wsHub.BroadcastEvent("bulk_import", map[string]interface{}{
		"uploadId": batch.ID.String(),
		"fileName": fileName,
		"inserted": len(insertedIDs),
		"updated":  len(changes),
	})

	return &ImportResult{
		UploadID: batch.ID,
		Inserted: len(insertedIDs),
		Updated:  len(changes),
	}, nil
}

func (s *importService) RollbackBatch(id uuid.UUID) (*RollbackResult, error) {
	batch, err := s.batchRepo.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}

	// Products inserted by this import have no other history to preserve.
	var insertedIDs []uuid.UUID
	for _, raw := range batch.ProductIDs {
		if pid, err := uuid.Parse(raw); err == nil {
			insertedIDs = append(insertedIDs, pid)
		}
	}
	if err := s.productRepo.DeleteMany(insertedIDs); err != nil {
		return nil, err
	}

	// Restore quantities in recorded order; last write wins when multiple
	// changes target the same size.
	for _, change := range batch.QuantityChanges {
		if err := s.productRepo.SetSizeQuantity(change.ProductID, change.Size, change.OldQuantity); err != nil {
			return nil, err
		}
	}

	if err := s.batchRepo.Delete(batch.ID); err != nil {
		return nil, err
	}

	s.wsHub.BroadcastEvent("bulk_rollback", map[string]interface{}{
		"uploadId": batch.ID.String(),
		"fileName": batch.FileName,
	})

	return &RollbackResult{
		Message:  fmt.Sprintf("Rolled back %d products and %d quantity changes", len(batch.ProductIDs), len(batch.QuantityChanges)),
		FileName: batch.FileName,
	}, nil
}

func (s *importService) ListBatches() ([]model.UploadBatch, error) {
	return s.batchRepo.FindAll()
}
