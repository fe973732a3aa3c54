package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
)

const userProfileColumns = `id, full_name, phone, is_admin, created_at, updated_at`

// UserProfileRepository implements repository.UserProfileRepository for Postgres.
type UserProfileRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewUserProfileRepository creates a new UserProfileRepository instance.
func NewUserProfileRepository(db *sql.DB) *UserProfileRepository {
	return &UserProfileRepository{db: db}
}

// FindByID retrieves a profile by the identity's user id.
func (r *UserProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	query := `SELECT ` + userProfileColumns + ` FROM user_profiles WHERE id = $1`

	var profile model.UserProfile
	err := queryRow(ctx, getExecutor(r.db, r.txn), query, []interface{}{id}, func(row rowScanner) error {
		return scanUserProfile(row, &profile)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user profile", id)
		}
		return nil, fmt.Errorf("failed to query user profile: %w", err)
	}

	return &profile, nil
}

// List returns profiles newest first.
func (r *UserProfileRepository) List(ctx context.Context, page repository.Pagination) ([]*model.UserProfile, error) {
	query := `SELECT ` + userProfileColumns + ` FROM user_profiles ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	page = page.Normalized()
	profiles := []*model.UserProfile{}
	err := queryRows(ctx, getExecutor(r.db, r.txn), query, []interface{}{page.Limit, page.Offset()}, func(rows rowScanner) error {
		var profile model.UserProfile
		if err := scanUserProfile(rows, &profile); err != nil {
			return err
		}
		profiles = append(profiles, &profile)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list user profiles: %w", err)
	}

	return profiles, nil
}

// Upsert inserts the profile or overwrites name, phone and admin flag.
func (r *UserProfileRepository) Upsert(ctx context.Context, profile *model.UserProfile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	query := `INSERT INTO user_profiles (id, full_name, phone, is_admin, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (id) DO UPDATE
	          SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone, is_admin = EXCLUDED.is_admin, updated_at = EXCLUDED.updated_at`

	_, err := execStatement(ctx, getExecutor(r.db, r.txn), query,
		profile.ID, profile.FullName, profile.Phone, profile.IsAdmin, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user profile: %w", err)
	}

	return nil
}

func scanUserProfile(row rowScanner, profile *model.UserProfile) error {
	return row.Scan(&profile.ID, &profile.FullName, &profile.Phone, &profile.IsAdmin, &profile.CreatedAt, &profile.UpdatedAt)
}
