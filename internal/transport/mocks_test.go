package transport

import (
	"context"
	"sort"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[int64]*domain.User
	next  int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[int64]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.TelegramID]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.next++
	user.ID = m.next
	m.users[user.TelegramID] = user
	return nil
}

func (m *mockUserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, exists := m.users[telegramID]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type mockCategoryRepository struct {
	categories    map[int64]*domain.Category
	subcategories map[int64]*domain.Subcategory
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{
		categories:    make(map[int64]*domain.Category),
		subcategories: make(map[int64]*domain.Subcategory),
	}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	category.ID = int64(len(m.categories) + 1)
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) CreateSubcategory(ctx context.Context, sub *domain.Subcategory) error {
	sub.ID = int64(len(m.subcategories) + 1)
	m.subcategories[sub.ID] = sub
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return c, nil
}

func (m *mockCategoryRepository) ListSubcategories(ctx context.Context, categoryID int64) ([]*domain.Subcategory, error) {
	out := []*domain.Subcategory{}
	for _, s := range m.subcategories {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockCategoryRepository) FindSubcategoryByID(ctx context.Context, id int64) (*domain.Subcategory, error) {
	s, ok := m.subcategories[id]
	if !ok {
		return nil, repository.ErrSubcategoryNotFound
	}
	return s, nil
}

type mockProductRepository struct {
	products []*domain.Product
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	product.ID = int64(len(m.products) + 1)
	m.products = append(m.products, product)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) ListBySubcategory(ctx context.Context, subcategoryID int64, page, pageSize int) ([]*domain.Product, int, error) {
	var matching []*domain.Product
	for _, p := range m.products {
		if p.SubcategoryID == subcategoryID {
			matching = append(matching, p)
		}
	}

	start := (page - 1) * pageSize
	if start >= len(matching) {
		return []*domain.Product{}, len(matching), nil
	}
	end := start + pageSize
	if end > len(matching) {
		end = len(matching)
	}
	return matching[start:end], len(matching), nil
}

type mockOrderRepository struct {
	orders map[uuid.UUID]*domain.Order
	events []string
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if _, exists := m.orders[order.ID]; exists {
		return repository.ErrOrderAlreadyExists
	}
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, topic string) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, repository.ErrInvalidStatusTransition
	}
	order.Status = status
	m.events = append(m.events, topic+":"+string(status))
	copied := *order
	return &copied, nil
}

type mockFAQRepository struct {
	items []*domain.FAQ
}

func (m *mockFAQRepository) Create(ctx context.Context, faq *domain.FAQ) error {
	faq.ID = int64(len(m.items) + 1)
	m.items = append(m.items, faq)
	return nil
}

func (m *mockFAQRepository) List(ctx context.Context) ([]*domain.FAQ, error) {
	return append([]*domain.FAQ{}, m.items...), nil
}

func (m *mockFAQRepository) FindByID(ctx context.Context, id int64) (*domain.FAQ, error) {
	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, repository.ErrFAQNotFound
}
