package database

import (
	"testing"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestMigrateCreatesAllTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"cakes", "orders", "order_items", "routes", "stopovers", "cake_flavors", "customer_feedback", "distributor_sales"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// Running twice is harmless.
	require.NoError(t, Migrate(db))
}

func TestEnsureAdmin(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	created, err := EnsureAdmin(db, "boss", "Boss@Bakery.test", "s3cretpass")
	require.NoError(t, err)
	assert.True(t, created)

	var admin models.User
	require.NoError(t, db.Where("username = ?", "boss").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, "boss@bakery.test", admin.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("s3cretpass")))

	created, err = EnsureAdmin(db, "boss", "boss@bakery.test", "other")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = EnsureAdmin(db, "", "x@y.z", "pw")
	assert.Error(t, err)
}
