package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/model"
)

const addressColumns = `id, user_id, recipient, street, number, complement, neighborhood, city, state, postal_code, is_default, created_at`

// AddressRepository implements repository.AddressRepository for Postgres.
type AddressRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewAddressRepository creates a new AddressRepository instance.
func NewAddressRepository(db *sql.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) Create(ctx context.Context, address *model.Address) error {
	address.InitMeta()

	query := `INSERT INTO addresses (` + addressColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := execStatement(ctx, getExecutor(r.db, r.txn), query,
		address.ID, address.UserID, address.Recipient, address.Street, address.Number, address.Complement,
		address.Neighborhood, address.City, address.State, address.PostalCode, address.IsDefault, address.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}

	return nil
}

func (r *AddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`

	var address model.Address
	err := queryRow(ctx, getExecutor(r.db, r.txn), query, []interface{}{id}, func(row rowScanner) error {
		return scanAddress(row, &address)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("address", id)
		}
		return nil, fmt.Errorf("failed to query address: %w", err)
	}

	return &address, nil
}

// ListByUser returns the default address first, then newest first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`

	addresses := []*model.Address{}
	err := queryRows(ctx, getExecutor(r.db, r.txn), query, []interface{}{userID}, func(rows rowScanner) error {
		var address model.Address
		if err := scanAddress(rows, &address); err != nil {
			return err
		}
		addresses = append(addresses, &address)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	return addresses, nil
}

// ClearDefault unsets the default flag on every address of the user.
func (r *AddressRepository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	_, err := execStatement(ctx, getExecutor(r.db, r.txn),
		`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}

// Update overwrites an address owned by address.UserID.
func (r *AddressRepository) Update(ctx context.Context, address *model.Address) error {
	query := `UPDATE addresses
	          SET recipient = $3, street = $4, number = $5, complement = $6, neighborhood = $7,
	              city = $8, state = $9, postal_code = $10, is_default = $11
	          WHERE id = $1 AND user_id = $2
	          RETURNING created_at`

	args := []interface{}{address.ID, address.UserID, address.Recipient, address.Street, address.Number, address.Complement,
		address.Neighborhood, address.City, address.State, address.PostalCode, address.IsDefault}
	err := queryRow(ctx, getExecutor(r.db, r.txn), query, args, func(row rowScanner) error {
		return row.Scan(&address.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("address", address.ID)
		}
		return fmt.Errorf("failed to update address: %w", err)
	}

	return nil
}

// Delete removes an address owned by userID.
func (r *AddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := execStatement(ctx, getExecutor(r.db, r.txn),
		`DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}

	return affectedOrNotFound(result, "address", id)
}

func scanAddress(row rowScanner, a *model.Address) error {
	return row.Scan(&a.ID, &a.UserID, &a.Recipient, &a.Street, &a.Number, &a.Complement,
		&a.Neighborhood, &a.City, &a.State, &a.PostalCode, &a.IsDefault, &a.CreatedAt)
}
