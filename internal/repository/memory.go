package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Cheertaboi/shop-microservices/internal/models"
)

// The memory repositories back local runs (STORE_DRIVER=memory) and tests.
// Every read returns a copy so callers cannot mutate stored state.

type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]models.User)}
}

func (r *MemoryUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrDuplicateKey
		}
	}
	u.ID = uuid.NewString()
	r.users[u.ID] = cloneUser(*u)
	return nil
}

func (r *MemoryUserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) ByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	out := cloneUser(u)
	return &out, nil
}

func (r *MemoryUserRepo) UpdateProfile(ctx context.Context, id string, name *string, addr *models.Address) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	if name != nil {
		u.Name = *name
	}
	if addr != nil {
		a := *addr
		u.Address = &a
	}
	r.users[id] = u
	out := cloneUser(u)
	return &out, nil
}

func (r *MemoryUserRepo) List(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func cloneUser(u models.User) models.User {
	if u.Address != nil {
		a := *u.Address
		u.Address = &a
	}
	return u
}

type MemoryProductRepo struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

func NewMemoryProductRepo() *MemoryProductRepo {
	return &MemoryProductRepo{products: make(map[string]models.Product)}
}

func (r *MemoryProductRepo) Create(ctx context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	r.products[p.ID] = *p
	return nil
}

func (r *MemoryProductRepo) ByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *MemoryProductRepo) List(ctx context.Context, category string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Product{}
	for _, p := range r.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryProductRepo) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(&p)
	p.UpdatedAt = now()
	r.products[id] = p
	return &p, nil
}

func (r *MemoryProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

func (r *MemoryProductRepo) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	p.Stock += delta
	p.UpdatedAt = now()
	r.products[id] = p
	return &p, nil
}

type MemoryCartRepo struct {
	mu    sync.RWMutex
	carts map[string]models.Cart
}

func NewMemoryCartRepo() *MemoryCartRepo {
	return &MemoryCartRepo{carts: make(map[string]models.Cart)}
}

func (r *MemoryCartRepo) ByUser(ctx context.Context, userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	c.Items = append([]models.CartItem{}, c.Items...)
	return &c, nil
}

func (r *MemoryCartRepo) Save(ctx context.Context, c *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *c
	stored.Items = append([]models.CartItem{}, c.Items...)
	r.carts[c.UserID] = stored
	return nil
}

type MemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

func NewMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{orders: make(map[string]models.Order)}
}

func (r *MemoryOrderRepo) Create(ctx context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = uuid.NewString()
	r.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *MemoryOrderRepo) ByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	out := cloneOrder(o)
	return &out, nil
}

func (r *MemoryOrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.list(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *MemoryOrderRepo) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(func(models.Order) bool { return true }), nil
}

func (r *MemoryOrderRepo) list(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Order{}
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	// newest first
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *MemoryOrderRepo) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	o.Status = status
	o.UpdatedAt = now()
	r.orders[id] = o
	out := cloneOrder(o)
	return &out, nil
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem{}, o.Items...)
	return o
}
