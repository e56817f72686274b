package services

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"pharmaplus_echo/internal/models"
)

// The synchronizer mirrors contact-like fields between an admin user and the
// pharmacy they manage. Each direction copies only the fields present in the
// triggering update patch, writes the paired record exactly once, and never
// re-triggers the opposite direction.

// SyncFromUser propagates an admin user's updated contact fields to their
// pharmacy. It is a no-op when the user is not an admin, has no pharmacy, or
// the referenced pharmacy does not exist; a dangling reference is logged but
// not an error, so the primary user update still succeeds.
func SyncFromUser(db *gorm.DB, user *models.User, patch models.UserPatch) error {
	if user.Role != models.RoleAdmin || user.PharmacyID == nil {
		return nil
	}

	var pharmacy models.Pharmacy
	if err := db.First(&pharmacy, *user.PharmacyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("sync: user %d references missing pharmacy %d, skipping", user.ID, *user.PharmacyID)
			return nil
		}
		return err
	}

	if patch.Phone != nil {
		pharmacy.Contact = user.Phone
	}
	if patch.Address != nil {
		pharmacy.Address = user.Address
	}
	if patch.Position != nil {
		pharmacy.Position = user.Position
	}
	if patch.License != nil && user.License != nil {
		pharmacy.License = *user.License
	}
	if patch.Email != nil {
		pharmacy.Email = user.Email
	}
	if patch.Firstname != nil || patch.Lastname != nil {
		pharmacy.Name = user.FullName
	}

	return db.Save(&pharmacy).Error
}

// SyncFromPharmacy propagates a pharmacy's updated fields to its managing
// admin user. Mirrors SyncFromUser in the opposite direction with the same
// no-op policy for dangling or non-admin managers.
func SyncFromPharmacy(db *gorm.DB, pharmacy *models.Pharmacy, patch models.PharmacyPatch) error {
	if pharmacy.ManagerID == nil {
		return nil
	}

	var user models.User
	if err := db.First(&user, *pharmacy.ManagerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("sync: pharmacy %d references missing manager %d, skipping", pharmacy.ID, *pharmacy.ManagerID)
			return nil
		}
		return err
	}
	if user.Role != models.RoleAdmin {
		return nil
	}

	if patch.Contact != nil {
		user.Phone = pharmacy.Contact
	}
	if patch.Address != nil {
		user.Address = pharmacy.Address
	}
	if patch.Position != nil {
		user.Position = pharmacy.Position
	}
	if patch.License != nil {
		license := pharmacy.License
		user.License = &license
	}
	if patch.Email != nil {
		user.Email = pharmacy.Email
	}
	if patch.Name != nil {
		user.FullName = pharmacy.Name
	}

	return db.Save(&user).Error
}
