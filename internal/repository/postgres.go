package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Cheertaboi/shop-microservices/internal/models"
)

//go:embed schema.sql
var schema string

// MigratePostgres creates the tables if they do not exist yet.
func MigratePostgres(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// --- users ---

type PostgresUserRepo struct {
	db *sql.DB
}

func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, name, email, password, address, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		u    models.User
		addr []byte
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &addr, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	if len(addr) > 0 && string(addr) != "null" {
		u.Address = &models.Address{}
		if err := json.Unmarshal(addr, u.Address); err != nil {
			return nil, fmt.Errorf("decode address: %w", err)
		}
	}
	return &u, nil
}

func (r *PostgresUserRepo) Create(ctx context.Context, u *models.User) error {
	var addr any
	if u.Address != nil {
		b, err := json.Marshal(u.Address)
		if err != nil {
			return err
		}
		addr = string(b)
	}
	id := uuid.NewString()

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, id, u.Name, u.Email, u.PasswordHash, addr, u.Role, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return err
	}
	u.ID = id
	return nil
}

func (r *PostgresUserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepo) ByID(ctx context.Context, id string) (*models.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepo) one(ctx context.Context, query string, args ...any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, id string, name *string, addr *models.Address) (*models.User, error) {
	var addrArg any
	if addr != nil {
		b, err := json.Marshal(addr)
		if err != nil {
			return nil, err
		}
		addrArg = string(b)
	}

	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    address = COALESCE($3::jsonb, address)
		WHERE id = $1
		RETURNING ` + userColumns
	return r.one(ctx, query, id, name, addrArg)
}

func (r *PostgresUserRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// --- products ---

type PostgresProductRepo struct {
	db *sql.DB
}

func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

const productColumns = `id, name, description, price, category, image_url, stock, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.ImageURL, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresProductRepo) one(ctx context.Context, query string, args ...any) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresProductRepo) Create(ctx context.Context, p *models.Product) error {
	id := uuid.NewString()
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		id, p.Name, p.Description, p.Price, p.Category, p.ImageURL, p.Stock, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *PostgresProductRepo) ByID(ctx context.Context, id string) (*models.Product, error) {
	return r.one(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *PostgresProductRepo) List(ctx context.Context, category string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *PostgresProductRepo) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	sets := []string{"updated_at = $2"}
	args := []any{id, now()}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}

	query := `UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + productColumns
	return r.one(ctx, query, args...)
}

// AdjustStock applies delta in a single statement so concurrent adjustments
// do not lose updates.
func (r *PostgresProductRepo) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	query := `
		UPDATE products
		SET stock = stock + $2,
		    updated_at = $3
		WHERE id = $1
		RETURNING ` + productColumns
	return r.one(ctx, query, id, delta, now())
}

func (r *PostgresProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- carts ---

type PostgresCartRepo struct {
	db *sql.DB
}

func NewPostgresCartRepo(db *sql.DB) *PostgresCartRepo {
	return &PostgresCartRepo{db: db}
}

func (r *PostgresCartRepo) ByUser(ctx context.Context, userID string) (*models.Cart, error) {
	var (
		c     models.Cart
		items []byte
	)
	query := `SELECT user_id, items, updated_at FROM carts WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&c.UserID, &items, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &c.Items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return &c, nil
}

func (r *PostgresCartRepo) Save(ctx context.Context, c *models.Cart) error {
	items := c.Items
	if items == nil {
		items = []models.CartItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items,
		    updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.ExecContext(ctx, query, c.UserID, string(b), c.UpdatedAt)
	return err
}

// --- orders ---

type PostgresOrderRepo struct {
	db *sql.DB
}

func NewPostgresOrderRepo(db *sql.DB) *PostgresOrderRepo {
	return &PostgresOrderRepo{db: db}
}

const orderColumns = `id, user_id, items, total, status, shipping_address, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var (
		o           models.Order
		items, addr []byte
		status      string
	)
	if err := row.Scan(&o.ID, &o.UserID, &items, &o.Total, &status, &addr, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	return &o, nil
}

func (r *PostgresOrderRepo) one(ctx context.Context, query string, args ...any) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

func (r *PostgresOrderRepo) Create(ctx context.Context, o *models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}
	id := uuid.NewString()

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		id, o.UserID, string(items), o.Total, string(o.Status), string(addr), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}

func (r *PostgresOrderRepo) ByID(ctx context.Context, id string) (*models.Order, error) {
	return r.one(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *PostgresOrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *PostgresOrderRepo) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *PostgresOrderRepo) list(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *PostgresOrderRepo) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	query := `
		UPDATE orders
		SET status = $2,
		    updated_at = $3
		WHERE id = $1
		RETURNING ` + orderColumns
	return r.one(ctx, query, id, string(status), now())
}
