package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"saif-gifts/cart"
	"saif-gifts/models"
	"saif-gifts/repositories"

	"github.com/shopspring/decimal"
)

// MockCartRepository is an in-memory repositories.CartRepository that
// enforces the same version ordering as the Redis implementation.
type MockCartRepository struct {
	mu       sync.RWMutex
	carts    map[string]repositories.StoredCart
	SaveErr  error
	Saves    int
	LastSave []cart.LineItem

	// FailOnSave makes the Nth Save call (counting from 1) return SaveErr
	// once; 0 fails every call while SaveErr is set.
	FailOnSave int
	attempts   int
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{carts: map[string]repositories.StoredCart{}}
}

func (m *MockCartRepository) Load(_ context.Context, owner string) repositories.StoredCart {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.carts[owner]
	items := make([]cart.LineItem, len(stored.Items))
	copy(items, stored.Items)
	return repositories.StoredCart{Items: items, Version: stored.Version}
}

func (m *MockCartRepository) Save(_ context.Context, owner string, items []cart.LineItem, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.SaveErr != nil && (m.FailOnSave == 0 || m.FailOnSave == m.attempts) {
		return m.SaveErr
	}
	if version <= m.carts[owner].Version {
		return repositories.ErrStaleCartWrite
	}
	m.Saves++
	m.LastSave = items
	m.carts[owner] = repositories.StoredCart{Items: items, Version: version}
	return nil
}

func (m *MockCartRepository) Seed(owner string, items ...cart.LineItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[owner] = repositories.StoredCart{Items: items, Version: 1}
}

// MockProductLookup implements ProductLookup and ProductCodeLookup.
type MockProductLookup struct {
	Products map[string]*models.Product
	Err      error
}

func (m *MockProductLookup) GetActiveProduct(_ context.Context, id string) (*models.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[id]
	if !ok || !p.IsActive {
		return nil, models.NewNotFoundError("product", id)
	}
	return p, nil
}

func (m *MockProductLookup) GetProductByCode(_ context.Context, code string) (*models.Product, error) {
	for _, p := range m.Products {
		if p.Code == code && p.IsActive {
			return p, nil
		}
	}
	return nil, models.NewNotFoundError("product", code)
}

type MockCurrentOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*models.OrderSnapshot
	PutErr error
}

func NewMockCurrentOrderStore() *MockCurrentOrderStore {
	return &MockCurrentOrderStore{orders: map[string]*models.OrderSnapshot{}}
}

func (m *MockCurrentOrderStore) Put(_ context.Context, owner string, snapshot *models.OrderSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.orders[owner] = snapshot
	return nil
}

func (m *MockCurrentOrderStore) Get(_ context.Context, owner string) (*models.OrderSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.orders[owner]
	if !ok {
		return nil, models.NewNotFoundError("order", "")
	}
	return s, nil
}

type MockOrderSink struct {
	mu      sync.Mutex
	Err     error
	Created map[string]string // order id -> user id
	Calls   int
}

func (m *MockOrderSink) CreateOrder(_ context.Context, userID string, snapshot *models.OrderSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	if m.Created == nil {
		m.Created = map[string]string{}
	}
	if existing, ok := m.Created[snapshot.OrderID]; ok && existing != userID {
		return fmt.Errorf("%w: %s", repositories.ErrOrderIDConflict, snapshot.OrderID)
	}
	m.Created[snapshot.OrderID] = userID
	return nil
}

type MockInvoiceRenderer struct {
	Err error
}

func (m *MockInvoiceRenderer) Render(order *models.OrderSnapshot) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return []byte("%PDF-" + order.OrderID), nil
}

type MockEventPublisher struct {
	mu        sync.Mutex
	Err       error
	Published []string
	Guest     []bool
}

func (m *MockEventPublisher) PublishOrderPlaced(_ context.Context, snapshot *models.OrderSnapshot, guest bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, snapshot.OrderID)
	m.Guest = append(m.Guest, guest)
	return m.Err
}

type MockMailer struct {
	mu          sync.Mutex
	Err         error
	Sent        []string
	Attachments [][]byte
}

func (m *MockMailer) SendOrderNotification(order *models.OrderSnapshot, invoice []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, order.OrderID)
	m.Attachments = append(m.Attachments, invoice)
	return m.Err
}

// MockProductStore implements ProductStore.
type MockProductStore struct {
	mu         sync.RWMutex
	Products   map[string]*models.Product
	GetCalls   int
	CreateErr  error
	UpdateErr  error
	GetLatency time.Duration
}

func NewMockProductStore(products ...*models.Product) *MockProductStore {
	m := &MockProductStore{Products: map[string]*models.Product{}}
	for _, p := range products {
		m.Products[p.ID] = p
	}
	return m
}

func (m *MockProductStore) GetAllCategories(_ context.Context) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := map[string]int{}
	for _, p := range m.Products {
		if p.IsActive {
			counts[p.Category]++
		}
	}
	out := []models.Category{}
	for name, n := range counts {
		out = append(out, models.Category{Name: name, ProductCount: n})
	}
	return out, nil
}

func (m *MockProductStore) GetAllProducts(_ context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Product{}
	for _, p := range m.Products {
		if p.IsActive && (filter.Category == "" || p.Category == filter.Category) {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (m *MockProductStore) GetProductByID(_ context.Context, id string) (*models.Product, error) {
	if m.GetLatency > 0 {
		time.Sleep(m.GetLatency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	p, ok := m.Products[id]
	if !ok {
		return nil, models.NewNotFoundError("product", id)
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductStore) GetProductByCode(_ context.Context, code string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.Products {
		if p.Code == code && p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("product", code)
}

func (m *MockProductStore) CreateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if product.ID == "" {
		product.ID = "generated-id"
	}
	cp := *product
	m.Products[product.ID] = &cp
	return nil
}

func (m *MockProductStore) UpdateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.Products[product.ID]; !ok {
		return models.NewNotFoundError("product", product.ID)
	}
	cp := *product
	m.Products[product.ID] = &cp
	return nil
}

func (m *MockProductStore) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Products[id]
	if !ok {
		return models.NewNotFoundError("product", id)
	}
	p.IsActive = false
	return nil
}

func (m *MockProductStore) GetPurchasePrices(_ context.Context, ids []string) (map[string]decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[string]decimal.Decimal{}
	for _, id := range ids {
		if p, ok := m.Products[id]; ok {
			out[id] = p.PurchasePrice
		}
	}
	return out, nil
}

type MockProductCache struct {
	mu      sync.Mutex
	items   map[string]models.Product
	Deleted []string
}

func NewMockProductCache() *MockProductCache {
	return &MockProductCache{items: map[string]models.Product{}}
}

func (m *MockProductCache) Get(_ context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrCacheMiss
	}
	return &p, nil
}

func (m *MockProductCache) Set(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[p.ID] = *p
	return nil
}

func (m *MockProductCache) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	m.Deleted = append(m.Deleted, id)
	return nil
}

type MockImageStore struct {
	mu        sync.Mutex
	UploadErr error
	Uploaded  []string
	Deleted   []string
}

func (m *MockImageStore) Upload(_ context.Context, file io.Reader, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	if _, err := io.ReadAll(file); err != nil {
		return "", err
	}
	id := "products/" + name
	m.Uploaded = append(m.Uploaded, id)
	return id, nil
}

func (m *MockImageStore) PreviewURL(fileID string) (string, error) {
	return "https://img.example.com/" + fileID, nil
}

func (m *MockImageStore) Delete(_ context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, fileID)
	return nil
}

type MockUserStore struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: map[int]*models.User{}, nextID: 1}
}

func (m *MockUserStore) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repositories.ErrEmailTaken
		}
	}
	user.ID = m.nextID
	m.nextID++
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("user", email)
}

func (m *MockUserStore) FindByID(_ context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.NewNotFoundError("user", "")
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserStore) FindAll(_ context.Context, page, limit int) ([]models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *MockUserStore) UpdateRole(_ context.Context, id int, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.NewNotFoundError("user", "")
	}
	u.Role = role
	return nil
}

type MockOrderStore struct {
	Orders       []models.OrderRecord
	StatusUpdate map[string]string
	Err          error
}

func (m *MockOrderStore) ListByUser(_ context.Context, userID string, _, _ int) ([]models.OrderRecord, int, error) {
	out := []models.OrderRecord{}
	for _, o := range m.Orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, len(out), m.Err
}

func (m *MockOrderStore) ListAll(_ context.Context, status string, _, _ int) ([]models.OrderRecord, int, error) {
	out := []models.OrderRecord{}
	for _, o := range m.Orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, len(out), m.Err
}

func (m *MockOrderStore) UpdateStatus(_ context.Context, orderID, status string) error {
	for _, o := range m.Orders {
		if o.OrderID == orderID {
			if m.StatusUpdate == nil {
				m.StatusUpdate = map[string]string{}
			}
			m.StatusUpdate[orderID] = status
			return nil
		}
	}
	return models.NewNotFoundError("order", orderID)
}

func (m *MockOrderStore) ListBetween(_ context.Context, from, to time.Time) ([]models.OrderRecord, error) {
	out := []models.OrderRecord{}
	for _, o := range m.Orders {
		if !o.OrderDate.Before(from) && o.OrderDate.Before(to) {
			out = append(out, o)
		}
	}
	return out, m.Err
}
