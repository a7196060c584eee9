package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go-retail-backoffice/internal/model"
	"go-retail-backoffice/internal/repository"

	"github.com/google/uuid"
)

// In-memory repository fakes. They return copies the way a real driver
// would, so service-side mutation never leaks into the stored state
// without an explicit Update/Save.

type memProductRepo struct {
	products map[uuid.UUID]*model.Product
	order    []uuid.UUID
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: map[uuid.UUID]*model.Product{}}
}

func copyProduct(p *model.Product) *model.Product {
	cp := *p
	cp.Sizes = make([]model.ProductSize, len(p.Sizes))
	copy(cp.Sizes, p.Sizes)
	return &cp
}

func (r *memProductRepo) Create(product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	for i := range product.Sizes {
		product.Sizes[i].ProductID = product.ID
	}
	r.products[product.ID] = copyProduct(product)
	r.order = append(r.order, product.ID)
	return nil
}

func (r *memProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyProduct(p), nil
}

func (r *memProductRepo) FindByKey(name, category, brand string) (*model.Product, error) {
	for _, id := range r.order {
		p, ok := r.products[id]
		if ok && p.Name == name && p.Category == category && p.Brand == brand {
			return copyProduct(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memProductRepo) Search(s repository.ProductSearch) ([]model.Product, int64, error) {
	var matched []model.Product
	for _, id := range r.order {
		p, ok := r.products[id]
		if !ok {
			continue
		}
		if s.Query != "" {
			q := strings.ToLower(s.Query)
			if !strings.Contains(strings.ToLower(p.Name), q) &&
				!strings.Contains(strings.ToLower(p.Category), q) &&
				!strings.Contains(strings.ToLower(p.Brand), q) &&
				!strings.Contains(strings.ToLower(p.Barcode), q) {
				continue
			}
		}
		matched = append(matched, *copyProduct(p))
	}

	desc := s.SortDir == "desc"
	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch s.SortBy {
		case "retailPrice":
			less = matched[i].RetailPrice < matched[j].RetailPrice
		case "quantity":
			less = matched[i].TotalQuantity() < matched[j].TotalQuantity()
		default:
			less = matched[i].Name < matched[j].Name
		}
		if desc {
			return !less
		}
		return less
	})

	total := int64(len(matched))
	start := (s.Page - 1) * s.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + s.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memProductRepo) Update(product *model.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return repository.ErrNotFound
	}
	for i := range product.Sizes {
		product.Sizes[i].ProductID = product.ID
	}
	r.products[product.ID] = copyProduct(product)
	return nil
}

func (r *memProductRepo) Delete(id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) DeleteMany(ids []uuid.UUID) error {
	for _, id := range ids {
		delete(r.products, id)
	}
	return nil
}

func (r *memProductRepo) DecrementSizeQuantity(productID uuid.UUID, size string, qty int) error {
	p, ok := r.products[productID]
	if !ok {
		return repository.ErrInsufficientStock
	}
	sz := p.FindSize(size)
	if sz == nil || sz.Quantity < qty {
		return repository.ErrInsufficientStock
	}
	sz.Quantity -= qty
	return nil
}

func (r *memProductRepo) IncrementSizeQuantity(productID uuid.UUID, size string, qty int) error {
	p, ok := r.products[productID]
	if !ok {
		return nil
	}
	if sz := p.FindSize(size); sz != nil {
		sz.Quantity += qty
	}
	return nil
}

func (r *memProductRepo) SetSizeQuantity(productID uuid.UUID, size string, quantity int) error {
	p, ok := r.products[productID]
	if !ok {
		return nil
	}
	if sz := p.FindSize(size); sz != nil {
		sz.Quantity = quantity
	}
	return nil
}

type memBatchRepo struct {
	batches map[uuid.UUID]*model.UploadBatch
}

func newMemBatchRepo() *memBatchRepo {
	return &memBatchRepo{batches: map[uuid.UUID]*model.UploadBatch{}}
}

func (r *memBatchRepo) Create(batch *model.UploadBatch) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	if batch.UploadedAt.IsZero() {
		batch.UploadedAt = time.Now()
	}
	r.batches[batch.ID] = batch
	return nil
}

func (r *memBatchRepo) FindByID(id uuid.UUID) (*model.UploadBatch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

func (r *memBatchRepo) FindByHash(fileHash string) (*model.UploadBatch, error) {
	for _, b := range r.batches {
		if b.FileHash == fileHash {
			return b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memBatchRepo) FindAll() ([]model.UploadBatch, error) {
	var out []model.UploadBatch
	for _, b := range r.batches {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (r *memBatchRepo) Delete(id uuid.UUID) error {
	delete(r.batches, id)
	return nil
}

type memOrderRepo struct {
	orders map[uuid.UUID]*model.Order
	seq    []uuid.UUID
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[uuid.UUID]*model.Order{}}
}

func copyOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Items = make([]model.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

func (r *memOrderRepo) Create(order *model.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	r.orders[order.ID] = copyOrder(order)
	r.seq = append(r.seq, order.ID)
	return nil
}

func (r *memOrderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyOrder(o), nil
}

func (r *memOrderRepo) Save(order *model.Order) error {
	if _, ok := r.orders[order.ID]; !ok {
		return repository.ErrNotFound
	}
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *memOrderRepo) matches(o *model.Order, f repository.OrderFilter) bool {
	if f.From != nil && o.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && o.Date.After(*f.To) {
		return false
	}
	if f.PaymentStatus != "" && string(o.PaymentStatus) != f.PaymentStatus {
		return false
	}
	if f.Query != "" {
		if o.ID.String() != f.Query &&
			!strings.Contains(strings.ToLower(o.CustomerPhone), strings.ToLower(f.Query)) {
			return false
		}
	}
	return true
}

func (r *memOrderRepo) List(f repository.OrderFilter) ([]model.Order, int64, error) {
	var matched []model.Order
	for _, id := range r.seq {
		if o, ok := r.orders[id]; ok && r.matches(o, f) {
			matched = append(matched, *copyOrder(o))
		}
	}

	asc := f.SortDir == "asc"
	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch f.SortBy {
		case "total":
			less = matched[i].Total < matched[j].Total
		case "profit":
			less = matched[i].Profit < matched[j].Profit
		default:
			less = matched[i].Date.Before(matched[j].Date)
		}
		if asc {
			return less
		}
		return !less
	})

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memOrderRepo) Aggregate(f repository.OrderFilter) (*repository.OrderAnalytics, error) {
	var stats repository.OrderAnalytics
	for _, o := range r.orders {
		if !r.matches(o, f) {
			continue
		}
		if f.PaymentStatus == "" && o.PaymentStatus == model.PaymentCancelled {
			continue
		}
		stats.TotalOrders++
		stats.TotalRevenue += o.Total
		stats.TotalProfit += o.Profit
	}
	if stats.TotalOrders > 0 {
		stats.AvgOrderPrice = stats.TotalRevenue / float64(stats.TotalOrders)
	}
	return &stats, nil
}

type memUserRepo struct {
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*model.User{}}
}

func (r *memUserRepo) Create(user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.Email] = user
	return nil
}

func (r *memUserRepo) FindByEmail(email string) (*model.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

type memOTPStore struct {
	codes map[string]string
}

func newMemOTPStore() *memOTPStore {
	return &memOTPStore{codes: map[string]string{}}
}

func (s *memOTPStore) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	s.codes[email] = code
	return nil
}

func (s *memOTPStore) Get(ctx context.Context, email string) (string, error) {
	code, ok := s.codes[email]
	if !ok {
		return "", repository.ErrNotFound
	}
	return code, nil
}

func (s *memOTPStore) Delete(ctx context.Context, email string) error {
	delete(s.codes, email)
	return nil
}

type fakeMailer struct {
	to      string
	subject string
	body    string
	sent    int
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.to = to
	m.subject = subject
	m.body = body
	m.sent++
	return nil
}
