package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/port"
)

// ErrOptimisticLock is returned by Save when the row changed since it was read.
var ErrOptimisticLock = fmt.Errorf("%w: optimistic lock conflict", domain.ErrConflict)

const mysqlDuplicateEntry = 1062

//go:embed schema.sql
var schema string

const productColumns = `id, name, description, price, currency, stock_quantity, status, version, created_at, updated_at`

type MySQLAdapter struct {
	db *sql.DB
}

var _ port.ProductRepository = (*MySQLAdapter)(nil)

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// EnsureSchema creates the products table if it does not exist.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Save inserts products that were never stored (version 0) and updates the
// others under optimistic locking. The returned product carries the new
// version.
func (m *MySQLAdapter) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	s := product.Snapshot()
	description := sql.NullString{String: s.Description, Valid: s.Description != ""}

	if s.Version == 0 {
		_, err := m.db.ExecContext(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			s.ID.String(), s.Name, description, s.Price.Amount(), s.Price.Currency(),
			s.StockQuantity, string(s.Status), s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
		)
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil, ErrOptimisticLock
		}
		if err != nil {
			return nil, fmt.Errorf("insert product: %w", err)
		}
	} else {
		result, err := m.db.ExecContext(ctx, `
			UPDATE products
			SET name = ?, description = ?, price = ?, currency = ?, stock_quantity = ?,
				status = ?, version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?`,
			s.Name, description, s.Price.Amount(), s.Price.Currency(), s.StockQuantity,
			string(s.Status), s.UpdatedAt.UTC(),
			s.ID.String(), s.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("update product: %w", err)
		}

		if err := checkUpdated(result); err != nil {
			return nil, err
		}
	}

	s.Version++
	return domain.ReconstituteProduct(s)
}

// checkUpdated maps an UPDATE that touched no row to ErrOptimisticLock.
func checkUpdated(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product rows affected: %w", err)
	}
	if rows == 0 {
		return ErrOptimisticLock
	}
	return nil
}

func (m *MySQLAdapter) FindByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	row := m.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id.String())

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return product, nil
}

func (m *MySQLAdapter) FindAll(ctx context.Context) ([]*domain.Product, error) {
	return m.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
}

// FindByNameContaining matches case-insensitively; % and _ in name are literal.
func (m *MySQLAdapter) FindByNameContaining(ctx context.Context, name string) ([]*domain.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(name))) + "%"
	return m.query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE LOWER(name) LIKE ? ESCAPE '\\'
		ORDER BY created_at, id`, pattern)
}

func (m *MySQLAdapter) FindActive(ctx context.Context) ([]*domain.Product, error) {
	return m.query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE status = ?
		ORDER BY created_at, id`, string(domain.ProductStatusActive))
}

func (m *MySQLAdapter) ExistsByID(ctx context.Context, id domain.ProductID) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, id.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query product existence: %w", err)
	}
	return exists, nil
}

func (m *MySQLAdapter) DeleteByID(ctx context.Context, id domain.ProductID) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (m *MySQLAdapter) query(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		rawID       string
		description sql.NullString
		amount      decimal.Decimal
		currency    string
		status      string
		s           domain.ProductSnapshot
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(&rawID, &s.Name, &description, &amount, &currency,
		&s.StockQuantity, &status, &s.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	id, err := domain.ParseProductID(rawID)
	if err != nil {
		return nil, err
	}
	price, err := domain.NewMoney(amount, currency)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", rawID, err)
	}

	s.ID = id
	s.Description = description.String
	s.Price = price
	s.Status = domain.ProductStatus(status)
	s.CreatedAt = createdAt.UTC()
	s.UpdatedAt = updatedAt.UTC()
	return domain.ReconstituteProduct(s)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
