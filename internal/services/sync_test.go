package services

import (
	"testing"

	"pharmaplus_echo/internal/models"
)

func strPtr(s string) *string { return &s }
func uintPtr(v uint) *uint    { return &v }

func TestSyncFromUserCopiesPatchedFields(t *testing.T) {
	db := newTestDB(t)

	pharmacy := createTestPharmacy(t, db, &models.Pharmacy{
		Name:    "Old Name",
		Contact: "old-phone",
		Address: "old address",
	})
	user := createTestUser(t, db, &models.User{
		Firstname:  "Omar",
		Lastname:   "Nabil",
		FullName:   "Omar Nabil",
		Email:      "omar@example.com",
		Role:       models.RoleAdmin,
		Phone:      "0111222333",
		Address:    "12 Tahrir St, Cairo",
		PharmacyID: &pharmacy.ID,
	})

	patch := models.UserPatch{
		Phone:   strPtr("0111222333"),
		Address: strPtr("12 Tahrir St, Cairo"),
	}
	if err := SyncFromUser(db, user, patch); err != nil {
		t.Fatalf("SyncFromUser: %v", err)
	}

	var got models.Pharmacy
	if err := db.First(&got, pharmacy.ID).Error; err != nil {
		t.Fatalf("reload pharmacy: %v", err)
	}

	if got.Contact != "0111222333" {
		t.Errorf("contact = %q; want the user's phone", got.Contact)
	}
	if got.Address != "12 Tahrir St, Cairo" {
		t.Errorf("address = %q; want the user's address", got.Address)
	}
	// Fields absent from the patch must be untouched.
	if got.Name != "Old Name" {
		t.Errorf("name = %q; a phone/address patch must not rename the pharmacy", got.Name)
	}
}

func TestSyncFromUserIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	pharmacy := createTestPharmacy(t, db, &models.Pharmacy{Name: "P"})
	user := createTestUser(t, db, &models.User{
		Email:      "a@example.com",
		Role:       models.RoleAdmin,
		Phone:      "123",
		PharmacyID: &pharmacy.ID,
	})

	patch := models.UserPatch{Phone: strPtr("123")}
	if err := SyncFromUser(db, user, patch); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	var first models.Pharmacy
	db.First(&first, pharmacy.ID)

	if err := SyncFromUser(db, user, patch); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	var second models.Pharmacy
	db.First(&second, pharmacy.ID)

	if first.Contact != second.Contact || first.Name != second.Name {
		t.Errorf("second identical sync changed state: %+v vs %+v", first, second)
	}
}

func TestSyncFromUserSkipsNonAdmins(t *testing.T) {
	db := newTestDB(t)

	pharmacy := createTestPharmacy(t, db, &models.Pharmacy{Contact: "unchanged"})
	user := createTestUser(t, db, &models.User{
		Email:      "u@example.com",
		Role:       models.RoleUser,
		Phone:      "999",
		PharmacyID: &pharmacy.ID,
	})

	if err := SyncFromUser(db, user, models.UserPatch{Phone: strPtr("999")}); err != nil {
		t.Fatalf("SyncFromUser: %v", err)
	}

	var got models.Pharmacy
	db.First(&got, pharmacy.ID)
	if got.Contact != "unchanged" {
		t.Errorf("non-admin update must not touch the pharmacy, contact = %q", got.Contact)
	}
}

func TestSyncFromUserDanglingPharmacyIsNoOp(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, &models.User{
		Email:      "dangling@example.com",
		Role:       models.RoleAdmin,
		Phone:      "555",
		PharmacyID: uintPtr(9999),
	})

	if err := SyncFromUser(db, user, models.UserPatch{Phone: strPtr("555")}); err != nil {
		t.Fatalf("dangling reference must not fail the update: %v", err)
	}
}

func TestSyncFromPharmacyCopiesPatchedFields(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, &models.User{
		FullName: "Old Full Name",
		Email:    "manager@example.com",
		Role:     models.RoleAdmin,
		Phone:    "old",
	})
	pharmacy := createTestPharmacy(t, db, &models.Pharmacy{
		Name:      "HealthPlus Pharmacy",
		Contact:   "0100200300",
		ManagerID: &user.ID,
	})

	patch := models.PharmacyPatch{
		Name:    strPtr("HealthPlus Pharmacy"),
		Contact: strPtr("0100200300"),
	}
	if err := SyncFromPharmacy(db, pharmacy, patch); err != nil {
		t.Fatalf("SyncFromPharmacy: %v", err)
	}

	var got models.User
	db.First(&got, user.ID)

	if got.Phone != "0100200300" {
		t.Errorf("phone = %q; want the pharmacy's contact", got.Phone)
	}
	if got.FullName != "HealthPlus Pharmacy" {
		t.Errorf("fullName = %q; want the pharmacy's name", got.FullName)
	}
	// The individual name components are not derived from the pharmacy name.
	if got.Firstname != "" || got.Lastname != "" {
		t.Errorf("firstname/lastname changed: %q %q", got.Firstname, got.Lastname)
	}
}

func TestSyncFromPharmacyRequiresAdminManager(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, &models.User{
		Email: "plain@example.com",
		Role:  models.RoleUser,
		Phone: "unchanged",
	})
	pharmacy := createTestPharmacy(t, db, &models.Pharmacy{
		Contact:   "111",
		ManagerID: &user.ID,
	})

	if err := SyncFromPharmacy(db, pharmacy, models.PharmacyPatch{Contact: strPtr("111")}); err != nil {
		t.Fatalf("SyncFromPharmacy: %v", err)
	}

	var got models.User
	db.First(&got, user.ID)
	if got.Phone != "unchanged" {
		t.Errorf("non-admin manager must not be updated, phone = %q", got.Phone)
	}
}

func TestSyncFromPharmacyDanglingManagerIsNoOp(t *testing.T) {
	db := newTestDB(t)

	pharmacy := createTestPharmacy(t, db, &models.Pharmacy{
		Contact:   "222",
		ManagerID: uintPtr(12345),
	})

	if err := SyncFromPharmacy(db, pharmacy, models.PharmacyPatch{Contact: strPtr("222")}); err != nil {
		t.Fatalf("dangling manager must not fail the update: %v", err)
	}
}
