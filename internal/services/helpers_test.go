package services_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lendstock/internal/models"
	"lendstock/internal/repositories"
	"lendstock/internal/services"
)

// newTestDB opens an in-memory SQLite database through the same gorm stack
// the services use in production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Each connection gets its own :memory: database; keep the pool at one.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))
	return db
}

type fixture struct {
	db      *gorm.DB
	catalog services.CatalogService
	users   services.UserService
	ledger  services.LedgerService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := newTestDB(t)
	itemRepo := repositories.NewItemRepository(db)
	userRepo := repositories.NewUserRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	return fixture{
		db:      db,
		catalog: services.NewCatalogService(db, itemRepo),
		users:   services.NewUserService(db, userRepo),
		ledger:  services.NewLedgerService(db, itemRepo, userRepo, transactionRepo),
	}
}

func (f fixture) mustCreateItem(t *testing.T, name, category string, amount int) *models.Item {
	t.Helper()
	item, err := f.catalog.CreateItem(name, category, "test item", amount)
	require.NoError(t, err)
	return item
}

func (f fixture) mustRegisterUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := f.users.Register(username, "Ada", "Lovelace", username+"@example.com", "hunter22")
	require.NoError(t, err)
	return user
}
