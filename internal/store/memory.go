package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront/internal/model"
)

type cartKey struct {
	userID    int64
	productID int64
}

// Memory is a process-local Store. All state is guarded by one RWMutex;
// InTx holds the write lock for the whole unit of work.
type Memory struct {
	mu sync.RWMutex

	seq int64

	products   map[int64]model.Product
	cartLines  map[int64]model.CartLine
	cartIndex  map[cartKey]int64
	orders     map[int64]model.Order
	orderLines map[int64][]model.OrderLine
	users      map[int64]model.User
	blogs      map[int64]model.Blog
	contacts   map[int64]model.ContactMessage
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		products:   make(map[int64]model.Product),
		cartLines:  make(map[int64]model.CartLine),
		cartIndex:  make(map[cartKey]int64),
		orders:     make(map[int64]model.Order),
		orderLines: make(map[int64][]model.OrderLine),
		users:      make(map[int64]model.User),
		blogs:      make(map[int64]model.Blog),
		contacts:   make(map[int64]model.ContactMessage),
	}
}

// nextID must be called with mu held for writing. Ids are monotonically
// increasing across tables, which keeps "newest first" a plain id sort.
func (m *Memory) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}

func cloneProduct(p model.Product) model.Product {
	p.Images = append([]string{}, p.Images...)
	return p
}

// --- catalog ---

func (m *Memory) ListProducts(context.Context) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetProduct(_ context.Context, id int64) (model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return model.Product{}, ErrNotFound
	}
	return cloneProduct(p), nil
}

func (m *Memory) CreateProduct(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID()
	m.products[p.ID] = cloneProduct(*p)
	return nil
}

func (m *Memory) UpdateProduct(_ context.Context, p model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return ErrNotFound
	}
	m.products[p.ID] = cloneProduct(p)
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	for lineID, l := range m.cartLines {
		if l.ProductID == id {
			delete(m.cartLines, lineID)
			delete(m.cartIndex, cartKey{l.UserID, l.ProductID})
		}
	}
	return nil
}

// --- carts ---

func (m *Memory) UpsertCartLine(_ context.Context, userID, productID int64, quantity int) (model.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[productID]; !ok {
		return model.CartLine{}, ErrNotFound
	}
	key := cartKey{userID, productID}
	if id, ok := m.cartIndex[key]; ok {
		l := m.cartLines[id]
		l.Quantity = quantity
		m.cartLines[id] = l
		return l, nil
	}
	l := model.CartLine{ID: m.nextID(), UserID: userID, ProductID: productID, Quantity: quantity}
	m.cartLines[l.ID] = l
	m.cartIndex[key] = l.ID
	return l, nil
}

func (m *Memory) GetCartLine(_ context.Context, id int64) (model.CartLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.cartLines[id]
	if !ok {
		return model.CartLine{}, ErrNotFound
	}
	return l, nil
}

func (m *Memory) DeleteCartLine(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.cartLines[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.cartLines, id)
	delete(m.cartIndex, cartKey{l.UserID, l.ProductID})
	return nil
}

func (m *Memory) ListCartItems(_ context.Context, userID int64) ([]model.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.CartItem{}
	for _, l := range m.cartLines {
		if l.UserID != userID {
			continue
		}
		p := m.products[l.ProductID]
		out = append(out, model.CartItem{
			CartLineID: l.ID,
			ProductID:  l.ProductID,
			Name:       p.Name,
			Price:      p.Price,
			Stock:      p.Stock,
			Quantity:   l.Quantity,
			Images:     append([]string{}, p.Images...),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CartLineID > out[j].CartLineID })
	return out, nil
}

func (m *Memory) CountCartItems(_ context.Context, userID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, l := range m.cartLines {
		if l.UserID == userID {
			total += l.Quantity
		}
	}
	return total, nil
}

func (m *Memory) ClearCart(_ context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, l := range m.cartLines {
		if l.UserID == userID {
			delete(m.cartLines, id)
			delete(m.cartIndex, cartKey{l.UserID, l.ProductID})
			n++
		}
	}
	return n, nil
}

// --- orders ---

func (m *Memory) GetOrderDetail(_ context.Context, id int64) (model.OrderDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return model.OrderDetail{}, ErrNotFound
	}
	u := m.users[o.UserID]
	d := model.OrderDetail{
		ID:            o.ID,
		CustomerName:  u.Name,
		CustomerEmail: u.Email,
		Date:          o.CreatedAt,
		Total:         o.Total,
		Lines:         make([]model.OrderLineDetail, 0, len(m.orderLines[id])),
	}
	for _, l := range m.orderLines[id] {
		p, ok := m.products[l.ProductID]
		ld := model.OrderLineDetail{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal,
			UnitPrice: decimal.Zero,
		}
		if ok {
			ld.Name = p.Name
			ld.UnitPrice = p.Price
			ld.Image = model.FirstImage(p.Images)
		}
		d.Lines = append(d.Lines, ld)
	}
	return d, nil
}

func (m *Memory) ListOrderSummaries(context.Context) ([]model.OrderSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.OrderSummary, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, model.OrderSummary{
			ID:           o.ID,
			UserID:       o.UserID,
			CustomerName: m.users[o.UserID].Name,
			Total:        o.Total,
			Date:         o.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// --- users ---

func (m *Memory) emailTaken(email string, except int64) bool {
	for _, u := range m.users {
		if u.ID != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (m *Memory) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(u.Email, 0) {
		return ErrConflict
	}
	u.ID = m.nextID()
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) GetUser(_ context.Context, id int64) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (m *Memory) ListUsers(context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateUser(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if m.emailTaken(u.Email, u.ID) {
		return ErrConflict
	}
	cur.Name, cur.Email, cur.Role = u.Name, u.Email, u.Role
	m.users[u.ID] = cur
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	for lineID, l := range m.cartLines {
		if l.UserID == id {
			delete(m.cartLines, lineID)
			delete(m.cartIndex, cartKey{l.UserID, l.ProductID})
		}
	}
	return nil
}

// --- blogs & contacts ---

func (m *Memory) ListBlogs(context.Context) ([]model.Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Blog, 0, len(m.blogs))
	for _, b := range m.blogs {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) GetBlog(_ context.Context, id int64) (model.Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blogs[id]
	if !ok {
		return model.Blog{}, ErrNotFound
	}
	return b, nil
}

func (m *Memory) CreateBlog(_ context.Context, b *model.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.nextID()
	m.blogs[b.ID] = *b
	return nil
}

func (m *Memory) CreateContact(_ context.Context, c *model.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID()
	m.contacts[c.ID] = *c
	return nil
}

// --- transactions ---

// InTx runs fn while holding the store's write lock. Writes made through the
// Tx are staged and only applied when fn returns nil. fn must not call other
// Memory methods.
func (m *Memory) InTx(ctx context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memTx{m: m, stock: make(map[int64]int)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for id, delta := range tx.stock {
		p := m.products[id]
		p.Stock -= delta
		m.products[id] = p
	}
	for _, o := range tx.orders {
		m.orders[o.ID] = o
	}
	for _, l := range tx.lines {
		m.orderLines[l.OrderID] = append(m.orderLines[l.OrderID], l)
	}
	return nil
}

type memTx struct {
	m      *Memory
	stock  map[int64]int
	orders []model.Order
	lines  []model.OrderLine
}

func (t *memTx) LockProducts(_ context.Context, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	for _, id := range ids {
		p, ok := t.m.products[id]
		if !ok {
			continue
		}
		p = cloneProduct(p)
		p.Stock -= t.stock[id]
		out[id] = p
	}
	return out, nil
}

func (t *memTx) DecrementStock(_ context.Context, id int64, qty int) (bool, error) {
	if qty <= 0 {
		return false, fmt.Errorf("decrement stock: quantity %d must be positive", qty)
	}
	p, ok := t.m.products[id]
	if !ok || p.Stock-t.stock[id] < qty {
		return false, nil
	}
	t.stock[id] += qty
	return true, nil
}

func (t *memTx) InsertOrder(_ context.Context, o *model.Order) error {
	o.ID = t.m.nextID()
	stored := *o
	stored.Lines = nil
	t.orders = append(t.orders, stored)
	return nil
}

func (t *memTx) InsertOrderLine(_ context.Context, l *model.OrderLine) error {
	l.ID = t.m.nextID()
	t.lines = append(t.lines, *l)
	return nil
}
