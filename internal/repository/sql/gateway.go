package sql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/lib/pq"
)

// Gateway is the Postgres implementation of repository.Gateway. A Gateway
// created by WithinTransaction routes every repository through its *sql.Tx.
type Gateway struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewGateway creates a Gateway over db.
func NewGateway(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) Products() repository.ProductRepository {
	return &ProductRepository{db: g.db, txn: g.txn}
}

func (g *Gateway) Categories() repository.CategoryRepository {
	return &CategoryRepository{db: g.db, txn: g.txn}
}

func (g *Gateway) AuditLogs() repository.AuditLogRepository {
	return &AuditLogRepository{db: g.db, txn: g.txn}
}

func (g *Gateway) Orders() repository.OrderRepository {
	return &OrderRepository{db: g.db, txn: g.txn}
}

func (g *Gateway) UserProfiles() repository.UserProfileRepository {
	return &UserProfileRepository{db: g.db, txn: g.txn}
}

func (g *Gateway) Addresses() repository.AddressRepository {
	return &AddressRepository{db: g.db, txn: g.txn}
}

func (g *Gateway) Wishlist() repository.WishlistRepository {
	return &WishlistRepository{db: g.db, txn: g.txn}
}

func (g *Gateway) Events() repository.EventRepository {
	return &EventRepository{db: g.db, txn: g.txn}
}

// WithinTransaction executes fn within a database transaction. Calls nested
// inside an open transaction join it.
func (g *Gateway) WithinTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if g.txn != nil {
		return fn(g)
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Gateway{db: g.db, txn: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("failed to rollback transaction", slog.Any("err", rbErr))
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func getExecutor(db *sql.DB, txn *sql.Tx) dbExecutor {
	if txn != nil {
		return txn
	}
	return db
}

// uuidArray encodes ids as a Postgres text array, to be cast with ::uuid[].
func uuidArray(ids []uuid.UUID) interface{} {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	return pq.Array(values)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// dbExecutor is an interface that represents either *sql.DB or *sql.Tx.
type dbExecutor interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// execStatement prepares query on ex and executes it once.
func execStatement(ctx context.Context, ex dbExecutor, query string, args ...interface{}) (sql.Result, error) {
	stmt, err := ex.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	return stmt.ExecContext(ctx, args...)
}

// queryRow prepares query on ex and scans its single row into dest.
// sql.ErrNoRows is returned unwrapped.
func queryRow(ctx context.Context, ex dbExecutor, query string, args []interface{}, scan func(row rowScanner) error) error {
	stmt, err := ex.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	return scan(stmt.QueryRowContext(ctx, args...))
}

// queryRows prepares query on ex and calls scan for every returned row.
func queryRows(ctx context.Context, ex dbExecutor, query string, args []interface{}, scan func(rows rowScanner) error) error {
	stmt, err := ex.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}

	return nil
}

// affectedOrNotFound turns a zero row count into a not-found error.
func affectedOrNotFound(result sql.Result, kind string, key interface{}) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(kind, key)
	}
	return nil
}
