package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pharmaplus_echo/internal/models"
)

// newTestDB opens an isolated in-memory database for one test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A second connection would see its own empty :memory: database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, user *models.User) *models.User {
	t.Helper()
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestPharmacy(t *testing.T, db *gorm.DB, pharmacy *models.Pharmacy) *models.Pharmacy {
	t.Helper()
	if err := db.Create(pharmacy).Error; err != nil {
		t.Fatalf("failed to create pharmacy: %v", err)
	}
	return pharmacy
}

func createTestMedicine(t *testing.T, db *gorm.DB, medicine *models.Medicine) *models.Medicine {
	t.Helper()
	if medicine.Status == "" {
		medicine.Status = models.CalculateMedicineStatus(medicine.Stock, medicine.Threshold)
	}
	if err := db.Create(medicine).Error; err != nil {
		t.Fatalf("failed to create medicine: %v", err)
	}
	return medicine
}
