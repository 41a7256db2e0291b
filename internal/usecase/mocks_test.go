package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/auroramart/personalization/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string][]byte
	getError error
	setError error
	delError error
	sets     int
	lastTTL  time.Duration
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.lastTTL = ttl
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delError != nil {
		return m.delError
	}
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockProductRepository evaluates product filters over an in-memory product list
type MockProductRepository struct {
	mu       sync.Mutex
	products []domain.Product
	findErr  error
	queries  []domain.ProductFilter
}

func NewMockProductRepository(products ...domain.Product) *MockProductRepository {
	return &MockProductRepository{products: products}
}

func (m *MockProductRepository) Find(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, f)
	if m.findErr != nil {
		return nil, m.findErr
	}

	var out []domain.Product
	for _, p := range m.products {
		if matchesFilter(p, f) {
			out = append(out, p)
		}
	}
	if f.OrderByRating {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Rating != out[j].Rating {
				return out[i].Rating > out[j].Rating
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *MockProductRepository) All(ctx context.Context) ([]domain.Product, error) {
	return m.Find(ctx, domain.ProductFilter{})
}

func (m *MockProductRepository) setProducts(products ...domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
}

func (m *MockProductRepository) lastQuery() domain.ProductFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queries) == 0 {
		return domain.ProductFilter{}
	}
	return m.queries[len(m.queries)-1]
}

func matchesFilter(p domain.Product, f domain.ProductFilter) bool {
	if len(f.SKUs) > 0 && !contains(f.SKUs, p.SKU) {
		return false
	}
	if contains(f.ExcludeSKUs, p.SKU) {
		return false
	}
	if len(f.Names) > 0 && !contains(f.Names, p.Name) {
		return false
	}
	if len(f.NameContains) > 0 {
		hit := false
		for _, fragment := range f.NameContains {
			if strings.Contains(strings.ToLower(p.Name), strings.ToLower(fragment)) {
				hit = true
			}
		}
		if !hit {
			return false
		}
	}
	if len(f.CategoryIDs) > 0 {
		hit := false
		for _, id := range f.CategoryIDs {
			if id == p.CategoryID {
				hit = true
			}
		}
		if !hit {
			return false
		}
	}
	if len(f.CategoryNames) > 0 && !contains(f.CategoryNames, p.CategoryName()) {
		return false
	}
	if f.ActiveOnly && (!p.IsActive || p.Archived) {
		return false
	}
	if f.InStockOnly && p.Stock <= 0 {
		return false
	}
	return true
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// MockCategoryRepository resolves categories from a name map
type MockCategoryRepository struct {
	byName map[string]*domain.Category
	err    error
}

func (m *MockCategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.byName[name]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

// MockCustomerRepository is a mock implementation of domain.CustomerRepository
type MockCustomerRepository struct {
	customers map[uint]*domain.Customer
	carts     map[uint]*domain.Cart
	cartErr   error
	updates   []preferredUpdate
}

type preferredUpdate struct {
	customerID uint
	label      string
	categoryID *uint
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: map[uint]*domain.Customer{},
		carts:     map[uint]*domain.Cart{},
	}
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	if c, ok := m.customers[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockCustomerRepository) GetCart(ctx context.Context, customerID uint) (*domain.Cart, error) {
	if m.cartErr != nil {
		return nil, m.cartErr
	}
	return m.carts[customerID], nil
}

func (m *MockCustomerRepository) UpdatePreferredCategory(ctx context.Context, customerID uint, label string, categoryID *uint) error {
	if _, ok := m.customers[customerID]; !ok {
		return domain.ErrNotFound
	}
	m.updates = append(m.updates, preferredUpdate{customerID, label, categoryID})
	return nil
}

// MockOrderRepository holds orders keyed by id
type MockOrderRepository struct {
	orders map[uint]*domain.Order
	err    error
	calls  int
}

func (m *MockOrderRepository) GetForCustomer(ctx context.Context, orderID, customerID uint) (*domain.Order, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[orderID]
	if !ok || o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// MockChatRepository stores sessions and messages in memory
type MockChatRepository struct {
	sessions map[uint]*domain.ChatSession
	messages map[uint][]domain.ChatMessage
	addErr   error
	nextID   uint
}

func NewMockChatRepository(sessions ...*domain.ChatSession) *MockChatRepository {
	m := &MockChatRepository{
		sessions: map[uint]*domain.ChatSession{},
		messages: map[uint][]domain.ChatMessage{},
	}
	for _, s := range sessions {
		m.sessions[s.ID] = s
	}
	return m
}

func (m *MockChatRepository) GetSession(ctx context.Context, sessionID, customerID uint) (*domain.ChatSession, error) {
	s, ok := m.sessions[sessionID]
	if !ok || s.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *MockChatRepository) Messages(ctx context.Context, sessionID uint) ([]domain.ChatMessage, error) {
	return append([]domain.ChatMessage(nil), m.messages[sessionID]...), nil
}

func (m *MockChatRepository) AddMessage(ctx context.Context, msg *domain.ChatMessage) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.nextID++
	msg.ID = m.nextID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Date(2025, 6, 1, 12, 0, int(m.nextID), 0, time.UTC)
	}
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], *msg)
	return nil
}

// MockChatGenerator records the prompts it receives
type MockChatGenerator struct {
	reply  *domain.Generation
	err    error
	prompt domain.ConversationContext
}

func (m *MockChatGenerator) Generate(ctx context.Context, conversation domain.ConversationContext) (*domain.Generation, error) {
	m.prompt = conversation
	if m.err != nil {
		return nil, m.err
	}
	return m.reply, nil
}
