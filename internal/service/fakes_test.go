package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/emart/internal/models"
	"github.com/Skotchmaster/emart/internal/notify"
	"github.com/Skotchmaster/emart/internal/repo"
)

// memStore is an in-memory stand-in for repo.MongoRepo.
type memStore struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]models.User
	products map[primitive.ObjectID]models.Product
	carts    map[primitive.ObjectID]*models.Cart
	orders   map[primitive.ObjectID]models.Order

	transactional bool
	clearFailures int
	clearCalls    int
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[primitive.ObjectID]models.User{},
		products: map[primitive.ObjectID]models.Product{},
		carts:    map[primitive.ObjectID]*models.Cart{},
		orders:   map[primitive.ObjectID]models.Order{},
	}
}

func (m *memStore) Transactional() bool { return m.transactional }

// WithTransaction restores orders and carts when fn fails.
func (m *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	orders := make(map[primitive.ObjectID]models.Order, len(m.orders))
	for k, v := range m.orders {
		orders[k] = v
	}
	carts := make(map[primitive.ObjectID]*models.Cart, len(m.carts))
	for k, v := range m.carts {
		c := *v
		c.Items = append([]models.CartItem(nil), v.Items...)
		carts[k] = &c
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.orders, m.carts = orders, carts
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repo.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(u.Email)
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) UsersByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (m *memStore) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) CountUsers(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memStore) UpdateUserAccess(_ context.Context, id primitive.ObjectID, role, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Role = role
	if hash != "" {
		u.PasswordHash = hash
	}
	m.users[id] = u
	return nil
}

func (m *memStore) CreateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.products[p.ID] = *p
	return nil
}

func (m *memStore) InsertProducts(ctx context.Context, ps []models.Product) error {
	for i := range ps {
		if err := m.CreateProduct(ctx, &ps[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) DeleteAllProducts(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = map[primitive.ObjectID]models.Product{}
	return nil
}

func (m *memStore) GetProduct(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) ProductsByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]models.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *memStore) ListProducts(_ context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Product
	for _, p := range m.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
				continue
			}
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := min(f.Offset, total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return append([]models.Product{}, all[start:end]...), total, nil
}

func (m *memStore) CountProducts(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.products)), nil
}

func (m *memStore) UpdateProduct(_ context.Context, id primitive.ObjectID, patch models.ProductPatch, now time.Time) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	patch.Apply(&p)
	p.UpdatedAt = now
	m.products[id] = p
	return &p, nil
}

func (m *memStore) DeleteProduct(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) GetCart(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp, nil
}

func (m *memStore) AddCartItem(_ context.Context, userID, productID primitive.ObjectID, qty int, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		c = &models.Cart{ID: primitive.NewObjectID(), UserID: userID, CreatedAt: now}
		m.carts[userID] = c
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			c.UpdatedAt = now
			return nil
		}
	}
	c.Items = append(c.Items, models.CartItem{ProductID: productID, Quantity: qty, AddedAt: now})
	c.UpdatedAt = now
	return nil
}

func (m *memStore) SetCartItemQuantity(_ context.Context, userID, productID primitive.ObjectID, qty int, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return repo.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			c.UpdatedAt = now
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memStore) RemoveCartItem(_ context.Context, userID, productID primitive.ObjectID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return repo.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = now
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memStore) ClearCart(_ context.Context, userID primitive.ObjectID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	if m.clearFailures > 0 {
		m.clearFailures--
		return errors.New("write conflict")
	}
	if c, ok := m.carts[userID]; ok {
		c.Items = []models.CartItem{}
		c.UpdatedAt = now
	}
	return nil
}

func (m *memStore) CreateOrder(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *memStore) GetOrder(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &o, nil
}

func (m *memStore) sortedOrders(keep func(models.Order) bool) []models.Order {
	out := []models.Order{}
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) OrdersByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedOrders(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (m *memStore) ListOrders(_ context.Context, limit int64) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sortedOrders(func(models.Order) bool { return true })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CountOrders(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.orders)), nil
}

func (m *memStore) UpdateOrderStatus(_ context.Context, id primitive.ObjectID, upd models.StatusUpdate, now time.Time) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	m.orders[id] = upd.Apply(o, now)
	return &o, nil
}

func (m *memStore) Revenue(context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for _, o := range m.orders {
		if o.PaymentStatus == models.PaymentCompleted {
			sum += o.TotalAmount
		}
	}
	return sum, nil
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type notification struct {
	event   notify.Event
	to      string
	payload any
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(_ context.Context, event notify.Event, to string, payload any) notify.Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{event: event, to: to, payload: payload})
	return notify.Result{Success: true, Message: "email queued"}
}

func (n *recordingNotifier) count(event notify.Event) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, s := range n.sent {
		if s.event == event {
			c++
		}
	}
	return c
}

type publishedEvent struct {
	topic, key string
	event      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func (p *recordingPublisher) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
