package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	reposql "github.com/iyhunko/storefront-backoffice/internal/repository/sql"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestDB holds the test database connection and cleanup function
type TestDB struct {
	DB       *sql.DB
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// SetupTestDB sets up a PostgreSQL container using dockertest and runs the
// embedded migrations. The test is skipped when docker is not reachable.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	// Create dockertest pool
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Could not construct docker pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Could not connect to docker: %s", err)
	}

	// Set max wait time for Docker operations
	pool.MaxWait = 120 * time.Second

	// Pull and run PostgreSQL container
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Set container to expire after 2 minutes to avoid orphaned containers
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	hostAndPort := resource.GetHostPort("5432/tcp")
	databaseURL := fmt.Sprintf("postgres://testuser:secret@%s/testdb?sslmode=disable", hostAndPort)

	log.Println("Connecting to database on url: ", databaseURL)

	// Wait for database to be ready
	var db *sql.DB
	if err = pool.Retry(func() error {
		var err error
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			return err
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	if err := reposql.RunMigrations(db); err != nil {
		t.Fatalf("Could not run migrations: %s", err)
	}

	return &TestDB{
		DB:       db,
		Pool:     pool,
		Resource: resource,
	}
}

// Cleanup closes the database connection and purges the Docker container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	if tdb.DB != nil {
		if err := tdb.DB.Close(); err != nil {
			t.Errorf("Could not close database: %s", err)
		}
	}

	if tdb.Pool != nil && tdb.Resource != nil {
		if err := tdb.Pool.Purge(tdb.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}

// TruncateTables truncates all tables in the test database
func (tdb *TestDB) TruncateTables(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"audit_logs", "events", "wishlist_items", "order_items", "orders",
		"addresses", "product_specifications", "product_images", "products",
		"categories", "user_profiles",
	}

	for _, table := range tables {
		_, err := tdb.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			t.Fatalf("Could not truncate table %s: %s", table, err)
		}
	}
}

// CreateCategory inserts a category through the repository.
func (tdb *TestDB) CreateCategory(t *testing.T, name, slug string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Slug: slug}
	require.NoError(t, reposql.NewCategoryRepository(tdb.DB).Create(context.Background(), category))
	return category
}

// CreateProfile inserts a user profile.
func (tdb *TestDB) CreateProfile(t *testing.T, fullName string, isAdmin bool) *model.UserProfile {
	t.Helper()
	profile := &model.UserProfile{ID: uuid.New(), FullName: fullName, IsAdmin: isAdmin}
	require.NoError(t, reposql.NewUserProfileRepository(tdb.DB).Upsert(context.Background(), profile))
	return profile
}

func newProduct(name, slug string, categoryID uuid.UUID, price string, stock int) *model.Product {
	return &model.Product{
		Name:        name,
		Slug:        slug,
		Description: "Peça artesanal em prata 925.",
		Price:       decimal.RequireFromString(price),
		CategoryID:  categoryID,
		Stock:       stock,
	}
}
