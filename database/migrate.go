package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Cake{},
		&models.Flavor{},
		&models.CakeFlavor{},
		&models.Route{},
		&models.Stopover{},
		&models.Order{},
		&models.OrderItem{},
		&models.Distributor{},
		&models.DistributorSale{},
		&models.Offer{},
		&models.CustomerFeedback{},
	}
}

// Migrate creates or updates the schema and verifies every table exists.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var missing []string
	for _, m := range Models() {
		if !db.Migrator().HasTable(m) {
			stmt := &gorm.Statement{DB: db}
			if err := stmt.Parse(m); err == nil {
				missing = append(missing, stmt.Schema.Table)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("tables missing after migration: %s", strings.Join(missing, ", "))
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

// EnsureAdmin creates an admin account unless a user with that username
// already exists. It reports whether a user was created.
func EnsureAdmin(db *gorm.DB, username, email, password string) (bool, error) {
	if username == "" || email == "" || password == "" {
		return false, errors.New("admin username, email and password are required")
	}

	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		utils.InfoLogger.Printf("Admin %s already exists", username)
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := models.User{
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	utils.InfoLogger.Printf("Admin %s created", username)
	return true, nil
}
