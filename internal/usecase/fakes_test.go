package usecase

import (
	"context"
	"sort"
	"sync"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =====================
// インメモリ実装（ユースケースのテスト用）
// =====================

type memStore struct {
	mu         sync.Mutex
	nextID     int64
	carts      map[int64]model.Cart
	cartItems  map[int64]model.CartItem
	orders     map[int64]model.Order
	orderItems map[int64]model.OrderItem
	services   map[int64]model.Service
	categories map[int64]model.Category
	reviews    map[int64]model.Review
}

func newMemStore() *memStore {
	return &memStore{
		carts:      map[int64]model.Cart{},
		cartItems:  map[int64]model.CartItem{},
		orders:     map[int64]model.Order{},
		orderItems: map[int64]model.OrderItem{},
		services:   map[int64]model.Service{},
		categories: map[int64]model.Category{},
		reviews:    map[int64]model.Review{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addService(svc model.Service) model.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID == 0 {
		svc.ID = s.id()
	}
	s.services[svc.ID] = svc
	return svc
}

func (s *memStore) setServicePrice(id int64, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc := s.services[id]
	svc.Price = mustDecimal(price)
	s.services[id] = svc
}

// --- TxRepos / TransactionManager ---

type memTx struct{ s *memStore }

func (t *memTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(&memRepos{s: t.s})
}

type memRepos struct{ s *memStore }

func (r *memRepos) Carts() repo.CartRepository           { return &memCarts{s: r.s} }
func (r *memRepos) CartItems() repo.CartItemRepository   { return &memCartItems{s: r.s} }
func (r *memRepos) Orders() repo.OrderRepository         { return &memOrders{s: r.s} }
func (r *memRepos) OrderItems() repo.OrderItemRepository { return &memOrderItems{s: r.s} }
func (r *memRepos) Services() repo.ServiceRepository     { return &memServices{s: r.s} }
func (r *memRepos) Reviews() repo.ReviewRepository       { return &memReviews{s: r.s} }

// --- carts ---

type memCarts struct{ s *memStore }

func (m *memCarts) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	c := model.Cart{ID: m.s.id(), UserID: userID}
	m.s.carts[c.ID] = c
	return c, nil
}

func (m *memCarts) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (m *memCarts) LockByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return m.FindByUserID(ctx, userID)
}

func (m *memCarts) Touch(ctx context.Context, cartID int64) error {
	return nil
}

func (m *memCarts) Clear(ctx context.Context, cartID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, it := range m.s.cartItems {
		if it.CartID == cartID {
			delete(m.s.cartItems, id)
		}
	}
	return nil
}

// --- cart items ---

type memCartItems struct{ s *memStore }

func (m *memCartItems) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	items := []model.CartItem{}
	for _, it := range m.s.cartItems {
		if it.CartID == cartID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *memCartItems) UpsertAdd(ctx context.Context, cartID int64, serviceID int64, addQty int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, it := range m.s.cartItems {
		if it.CartID == cartID && it.ServiceID == serviceID {
			it.Quantity += addQty
			m.s.cartItems[id] = it
			return nil
		}
	}
	it := model.CartItem{ID: m.s.id(), CartID: cartID, ServiceID: serviceID, Quantity: addQty}
	m.s.cartItems[it.ID] = it
	return nil
}

func (m *memCartItems) SetQuantity(ctx context.Context, cartID int64, serviceID int64, qty int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, it := range m.s.cartItems {
		if it.CartID == cartID && it.ServiceID == serviceID {
			it.Quantity = qty
			m.s.cartItems[id] = it
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memCartItems) DeleteByCartAndService(ctx context.Context, cartID int64, serviceID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, it := range m.s.cartItems {
		if it.CartID == cartID && it.ServiceID == serviceID {
			delete(m.s.cartItems, id)
			return nil
		}
	}
	return repo.ErrNotFound
}

// --- orders ---

type memOrders struct{ s *memStore }

func (m *memOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) LockByID(ctx context.Context, orderID int64) (model.Order, error) {
	return m.FindByID(ctx, orderID)
}

func (m *memOrders) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	orders := []model.Order{}
	for _, o := range m.s.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, int64(len(orders)), nil
}

func (m *memOrders) Create(ctx context.Context, order model.Order) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	order.ID = m.s.id()
	m.s.orders[order.ID] = order
	return order.ID, nil
}

func (m *memOrders) UpdateStatusFrom(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	m.s.orders[orderID] = o
	return true, nil
}

func (m *memOrders) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	orders := []model.Order{}
	for _, o := range m.s.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, int64(len(orders)), nil
}

// --- order items ---

type memOrderItems struct{ s *memStore }

func (m *memOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, it := range items {
		it.ID = m.s.id()
		it.OrderID = orderID
		m.s.orderItems[it.ID] = it
	}
	return nil
}

func (m *memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	items := []model.OrderItem{}
	for _, it := range m.s.orderItems {
		if it.OrderID == orderID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// --- services ---

type memServices struct{ s *memStore }

func (m *memServices) ListPublic(ctx context.Context, q repo.ServiceListQuery) ([]model.Service, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	services := []model.Service{}
	for _, svc := range m.s.services {
		if !svc.IsActive {
			continue
		}
		if q.CategoryID != nil && (svc.CategoryID == nil || *svc.CategoryID != *q.CategoryID) {
			continue
		}
		services = append(services, svc)
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services, int64(len(services)), nil
}

func (m *memServices) FindByID(ctx context.Context, id int64) (model.Service, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	svc, ok := m.s.services[id]
	if !ok {
		return model.Service{}, repo.ErrNotFound
	}
	return svc, nil
}

func (m *memServices) Create(ctx context.Context, svc model.Service) (model.Service, error) {
	return m.s.addService(svc), nil
}

func (m *memServices) Update(ctx context.Context, svc model.Service) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.services[svc.ID]; !ok {
		return repo.ErrNotFound
	}
	m.s.services[svc.ID] = svc
	return nil
}

func (m *memServices) SoftDelete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.services[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.s.services, id)
	return nil
}

// --- categories ---

type memCategories struct{ s *memStore }

func (m *memCategories) List(ctx context.Context) ([]model.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cats := []model.Category{}
	for _, c := range m.s.categories {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].ID < cats[j].ID })
	return cats, nil
}

func (m *memCategories) FindByID(ctx context.Context, id int64) (model.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.categories[id]
	if !ok {
		return model.Category{}, repo.ErrNotFound
	}
	return c, nil
}

func (m *memCategories) Create(ctx context.Context, c model.Category) (model.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c.ID = m.s.id()
	m.s.categories[c.ID] = c
	return c, nil
}

func (m *memCategories) Update(ctx context.Context, c model.Category) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	old, ok := m.s.categories[c.ID]
	if !ok {
		return repo.ErrNotFound
	}
	old.Name = c.Name
	old.Description = c.Description
	m.s.categories[c.ID] = old
	return nil
}

func (m *memCategories) Delete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.categories[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.s.categories, id)
	return nil
}

// --- reviews ---

type memReviews struct{ s *memStore }

func (m *memReviews) Create(ctx context.Context, rv model.Review) (model.Review, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, ex := range m.s.reviews {
		if ex.UserID == rv.UserID && ex.OrderID == rv.OrderID && ex.ServiceID == rv.ServiceID {
			return model.Review{}, repo.ErrConflict
		}
	}
	rv.ID = m.s.id()
	m.s.reviews[rv.ID] = rv
	return rv, nil
}

func (m *memReviews) ListByServiceID(ctx context.Context, serviceID int64) ([]model.Review, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	reviews := []model.Review{}
	for _, rv := range m.s.reviews {
		if rv.ServiceID == serviceID {
			reviews = append(reviews, rv)
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		if reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].ID > reviews[j].ID
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

func (m *memReviews) Exists(ctx context.Context, userID int64, orderID int64, serviceID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, rv := range m.s.reviews {
		if rv.UserID == userID && rv.OrderID == orderID && rv.ServiceID == serviceID {
			return true, nil
		}
	}
	return false, nil
}
