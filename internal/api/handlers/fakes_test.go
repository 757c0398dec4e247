package handlers

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"shop-backend/internal/models"
	"shop-backend/internal/repository"
)

// fakeBlobStore records every call so tests can assert that blob deletion
// is attempted exactly once per removed image, and that a delete failure
// never fails the surrounding operation.
type fakeBlobStore struct {
	mu        sync.Mutex
	saved     []string
	removed   []string
	removeErr error
	nextID    int
}

func (s *fakeBlobStore) Save(originalFilename string, r io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	io.Copy(io.Discard, r)
	s.nextID++
	url := fmt.Sprintf("/static/uploads/blob-%d.jpg", s.nextID)
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *fakeBlobStore) Remove(publicURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, publicURL)
	return s.removeErr
}

// fakeProductRepo is an in-memory product repository implementing the same
// reconcile semantics as the SQL one.
type fakeProductRepo struct {
	mu            sync.Mutex
	products      map[int]*models.Product
	nextProductID int
	nextVariantID int
	nextImageID   int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[int]*models.Product{}}
}

func (f *fakeProductRepo) Create(ctx context.Context, p *models.Product, variants []models.Variant, imageURLs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextProductID++
	p.ProductID = f.nextProductID
	p.CreatedAt = time.Now()
	p.Variants = []models.Variant{}
	p.Images = []models.Image{}

	for _, v := range variants {
		f.nextVariantID++
		v.VariantID = f.nextVariantID
		v.ProductID = p.ProductID
		p.Variants = append(p.Variants, v)
	}
	for i, url := range imageURLs {
		f.nextImageID++
		p.Images = append(p.Images, models.Image{
			ImageID:   f.nextImageID,
			ProductID: p.ProductID,
			ImageURL:  url,
			IsPrimary: i == 0,
		})
	}

	stored := *p
	f.products[p.ProductID] = &stored
	return nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (f *fakeProductRepo) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Product
	for id := 1; id <= f.nextProductID; id++ {
		p, ok := f.products[id]
		if !ok {
			continue
		}
		if filter.Featured != nil && p.IsFeatured != *filter.Featured {
			continue
		}
		out = append(out, *p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Reconcile(ctx context.Context, id int, desired models.ProductUpdate) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	p.Name = desired.Name
	p.Description = desired.Description
	p.Price = desired.Price
	p.IsFeatured = desired.IsFeatured

	keep := make(map[int]bool)
	var variants []models.Variant
	for _, v := range desired.Variants {
		if v.VariantID > 0 {
			found := false
			for _, existing := range p.Variants {
				if existing.VariantID == v.VariantID {
					found = true
					break
				}
			}
			if !found {
				return nil, repository.ErrNotFound
			}
			keep[v.VariantID] = true
			v.ProductID = id
			variants = append(variants, v)
		} else {
			f.nextVariantID++
			v.VariantID = f.nextVariantID
			v.ProductID = id
			variants = append(variants, v)
		}
	}
	p.Variants = variants

	for _, url := range desired.NewImageURLs {
		f.nextImageID++
		p.Images = append(p.Images, models.Image{
			ImageID:   f.nextImageID,
			ProductID: id,
			ImageURL:  url,
			IsPrimary: false,
		})
	}

	var removed []string
	for _, imageID := range desired.ImagesToDelete {
		idx := -1
		for i, img := range p.Images {
			if img.ImageID == imageID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, repository.ErrNotFound
		}
		removed = append(removed, p.Images[idx].ImageURL)
		p.Images = append(p.Images[:idx], p.Images[idx+1:]...)
	}

	if desired.PrimaryImageID != nil {
		found := false
		for i := range p.Images {
			p.Images[i].IsPrimary = false
			if p.Images[i].ImageID == *desired.PrimaryImageID {
				found = true
			}
		}
		if !found {
			return nil, repository.ErrNotFound
		}
		for i := range p.Images {
			if p.Images[i].ImageID == *desired.PrimaryImageID {
				p.Images[i].IsPrimary = true
			}
		}
	}

	return removed, nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var urls []string
	for _, img := range p.Images {
		urls = append(urls, img.ImageURL)
	}
	delete(f.products, id)
	return urls, nil
}

func (f *fakeProductRepo) DeleteImage(ctx context.Context, productID, imageID int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return "", repository.ErrNotFound
	}
	for i, img := range p.Images {
		if img.ImageID == imageID {
			p.Images = append(p.Images[:i], p.Images[i+1:]...)
			return img.ImageURL, nil
		}
	}
	return "", repository.ErrNotFound
}

// fakeOrderRepo mimics the transactional coordinator: a configured failure
// leaves zero state behind, as a rollback would.
type fakeOrderRepo struct {
	mu          sync.Mutex
	orders      map[int]*models.Order
	items       map[int][]models.OrderItem
	nextOrderID int
	placeErr    error
	statusNames map[int]string
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: map[int]*models.Order{},
		items:  map[int][]models.OrderItem{},
		statusNames: map[int]string{
			1: "pending", 2: "processing", 3: "shipped", 4: "delivered", 5: "cancelled",
		},
	}
}

func (f *fakeOrderRepo) Place(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(items) == 0 {
		return fmt.Errorf("%w: order must have at least one item", repository.ErrInvalidInput)
	}
	if f.placeErr != nil {
		return fmt.Errorf("%w: %v", repository.ErrTransaction, f.placeErr)
	}

	f.nextOrderID++
	order.OrderID = f.nextOrderID
	order.StatusID = 1
	order.OrderDate = time.Now()

	stored := *order
	f.orders[order.OrderID] = &stored
	for i := range items {
		items[i].OrderID = order.OrderID
		items[i].OrderItemID = len(f.items[order.OrderID]) + 1
		f.items[order.OrderID] = append(f.items[order.OrderID], items[i])
	}
	return nil
}

func (f *fakeOrderRepo) List(ctx context.Context) ([]models.OrderSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.OrderSummary
	for id := 1; id <= f.nextOrderID; id++ {
		o, ok := f.orders[id]
		if !ok {
			continue
		}
		out = append(out, models.OrderSummary{
			OrderID:      o.OrderID,
			TotalAmount:  o.TotalAmount,
			Status:       f.statusNames[o.StatusID],
			OrderDate:    o.OrderDate,
			CustomerName: o.CustomerName,
		})
	}
	return out, nil
}

func (f *fakeOrderRepo) GetWithItems(ctx context.Context, id int) (*models.OrderDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	detail := models.OrderDetail{
		Order:  *o,
		Status: f.statusNames[o.StatusID],
		Items:  []models.OrderDetailItem{},
	}
	for _, item := range f.items[id] {
		detail.Items = append(detail.Items, models.OrderDetailItem{
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return &detail, nil
}

func (f *fakeOrderRepo) SetStatus(ctx context.Context, id, statusID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if _, ok := f.statusNames[statusID]; !ok {
		return fmt.Errorf("%w: unknown status id %d", repository.ErrInvalidInput, statusID)
	}
	o.StatusID = statusID
	return nil
}

func (f *fakeOrderRepo) Cancel(ctx context.Context, id int) error {
	return f.SetStatus(ctx, id, repository.CancelledStatusID)
}

// fakeUserRepo backs the auth and user handler tests.
type fakeUserRepo struct {
	mu         sync.Mutex
	byUsername map[string]*models.User
	nextID     int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byUsername: map[string]*models.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUsername[u.Username]; ok {
		return fmt.Errorf("%w: username already exists", repository.ErrDuplicate)
	}
	f.nextID++
	u.UserID = f.nextID
	u.CreatedAt = time.Now()
	stored := *u
	f.byUsername[u.Username] = &stored
	return nil
}

func (f *fakeUserRepo) GetAll(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.byUsername {
		c := *u
		c.PasswordHash = ""
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byUsername[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id int, update models.UserUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byUsername {
		if u.UserID != id {
			continue
		}
		if update.Username != nil {
			delete(f.byUsername, u.Username)
			u.Username = *update.Username
			f.byUsername[u.Username] = u
		}
		if update.Email != nil {
			u.Email = *update.Email
		}
		if update.PasswordHash != nil {
			u.PasswordHash = *update.PasswordHash
		}
		return nil
	}
	return repository.ErrNotFound
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, u := range f.byUsername {
		if u.UserID == id {
			delete(f.byUsername, name)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	return f.Update(ctx, id, models.UserUpdate{PasswordHash: &passwordHash})
}

// fakeConfigRepo seeds a fixed key set; Set never creates keys.
type fakeConfigRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeConfigRepo(values map[string]string) *fakeConfigRepo {
	return &fakeConfigRepo{values: values}
}

func (f *fakeConfigRepo) GetAll(ctx context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out, nil
}

func (f *fakeConfigRepo) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		return repository.ErrNotFound
	}
	f.values[key] = value
	return nil
}

type fakeStatusRepo struct{}

func (fakeStatusRepo) GetAll(ctx context.Context) ([]models.OrderStatus, error) {
	return []models.OrderStatus{
		{StatusID: 1, StatusName: "pending"},
		{StatusID: 2, StatusName: "processing"},
		{StatusID: 3, StatusName: "shipped"},
		{StatusID: 4, StatusName: "delivered"},
		{StatusID: 5, StatusName: "cancelled"},
	}, nil
}
