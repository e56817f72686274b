package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pharmaplus_echo/internal/middleware"
	"pharmaplus_echo/internal/models"
	"pharmaplus_echo/internal/services"
)

// UserHandler handles user account endpoints
type UserHandler struct {
	db       *gorm.DB
	location *services.LocationService
}

func NewUserHandler(db *gorm.DB, location *services.LocationService) *UserHandler {
	return &UserHandler{db: db, location: location}
}

type registerRequest struct {
	Firstname string          `json:"firstname"`
	Lastname  string          `json:"lastname"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	Phone     string          `json:"phone"`
	DOB       string          `json:"dob"`
	Joined    string          `json:"joined"`
	Address   string          `json:"address"`
	Latitude  *float64        `json:"latitude"`
	Longitude *float64        `json:"longitude"`
	License   string          `json:"license"`
}

// Register creates a user account. Admins must carry a license and get a
// pharmacy created and linked automatically.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}

	if req.Email == "" {
		return fmt.Errorf("%w: email is required", services.ErrValidation)
	}

	db := h.db.WithContext(c.Request().Context())

	var existing models.User
	err := db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return fmt.Errorf("%w: email already registered", services.ErrValidation)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role == models.RoleAdmin && req.License == "" {
		return fmt.Errorf("%w: license is required for admin registration", services.ErrValidation)
	}

	joined := req.Joined
	if joined == "" {
		joined = time.Now().Format("2006-01-02")
	}

	user := models.User{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		FullName:  req.Firstname + " " + req.Lastname,
		Email:     req.Email,
		Role:      role,
		Phone:     req.Phone,
		DOB:       req.DOB,
		Joined:    joined,
		Address:   req.Address,
		Preferences: models.Preferences{
			Newsletter: true,
			SMSAlerts:  false,
		},
	}
	if role == models.RoleAdmin {
		license := req.License
		user.License = &license
	}
	if req.Latitude != nil && req.Longitude != nil {
		user.Position = &models.Position{Lat: *req.Latitude, Lng: *req.Longitude}
	}

	if err := db.Create(&user).Error; err != nil {
		return err
	}

	if user.Role == models.RoleAdmin {
		if err := h.createPharmacyForAdmin(c, &user); err != nil {
			return err
		}
	}

	return c.JSON(http.StatusCreated, success(map[string]interface{}{"user": user}))
}

// createPharmacyForAdmin builds the admin's pharmacy from their profile. The
// pharmacy starts inactive until a superadmin approves it. Coordinates come
// from the user's position, or failing that are geocoded from their address.
func (h *UserHandler) createPharmacyForAdmin(c echo.Context, user *models.User) error {
	pharmacy := models.Pharmacy{
		Name:      user.FullName + "'s Pharmacy",
		Contact:   user.Phone,
		Email:     user.Email,
		Address:   user.Address,
		Status:    models.PharmacyStatusInactive,
		ManagerID: &user.ID,
	}
	if user.License != nil {
		pharmacy.License = *user.License
	}

	if user.Position != nil {
		pharmacy.Position = user.Position
	} else if user.Address != "" {
		pharmacy.Position = h.location.GeocodeAddress(user.Address)
	}

	db := h.db.WithContext(c.Request().Context())
	if err := db.Create(&pharmacy).Error; err != nil {
		return err
	}

	user.PharmacyID = &pharmacy.ID
	return db.Save(user).Error
}

// List returns users, paginated.
func (h *UserHandler) List(c echo.Context) error {
	_, limit, offset := pagination(c)

	var users []models.User
	err := h.db.WithContext(c.Request().Context()).
		Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"users": users}))
}

// Get returns a single user by id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var user models.User
	if err := h.db.WithContext(c.Request().Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user not found", services.ErrNotFound)
		}
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"user": user}))
}

// Profile returns the authenticated user's own record.
func (h *UserHandler) Profile(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no account found for this token")
	}
	return c.JSON(http.StatusOK, success(map[string]interface{}{"user": user}))
}

// UpdateProfile applies a partial update to the authenticated user's record.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no account found for this token")
	}
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", user.ID))
	return h.Update(c)
}

// Update applies a partial update to a user. Promoting a user to admin links
// or creates their pharmacy; updates to an admin's contact fields are mirrored
// onto the pharmacy they manage.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var patch models.UserPatch
	if err := c.Bind(&patch); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}

	db := h.db.WithContext(c.Request().Context())

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user not found", services.ErrNotFound)
		}
		return err
	}

	promotingToAdmin := patch.Role != nil && *patch.Role == models.RoleAdmin && user.Role != models.RoleAdmin

	switch {
	case promotingToAdmin:
		if user.License == nil && patch.License == nil {
			return fmt.Errorf("%w: user must have a license to become an admin", services.ErrValidation)
		}
		patch.Apply(&user)

		var existing models.Pharmacy
		err := db.Where("manager_id = ?", user.ID).First(&existing).Error
		switch {
		case err == nil:
			user.PharmacyID = &existing.ID
			if patch.License != nil {
				existing.License = *patch.License
				if err := db.Save(&existing).Error; err != nil {
					return err
				}
			}
			if err := db.Save(&user).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Save(&user).Error; err != nil {
				return err
			}
			if err := h.createPharmacyForAdmin(c, &user); err != nil {
				return err
			}
		default:
			return err
		}

	case patch.Role != nil && *patch.Role == models.RoleAdmin && patch.License != nil:
		// Already an admin, refreshing the license.
		patch.Apply(&user)
		if user.PharmacyID != nil {
			if err := db.Model(&models.Pharmacy{}).
				Where("id = ?", *user.PharmacyID).
				Update("license", *patch.License).Error; err != nil {
				return err
			}
		}
		if err := db.Save(&user).Error; err != nil {
			return err
		}

	default:
		// Non-admins cannot carry a license.
		if user.Role != models.RoleAdmin {
			patch.License = nil
		}
		patch.Apply(&user)
		if err := db.Save(&user).Error; err != nil {
			return err
		}
		if err := services.SyncFromUser(db, &user, patch); err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"user": user}))
}

type preferencesRequest struct {
	Preferences models.Preferences `json:"preferences"`
}

// UpdatePreferences replaces a user's notification preferences.
func (h *UserHandler) UpdatePreferences(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req preferencesRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}

	db := h.db.WithContext(c.Request().Context())

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user not found", services.ErrNotFound)
		}
		return err
	}

	user.Preferences = req.Preferences
	if err := db.Save(&user).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"preferences": user.Preferences}))
}

// Delete removes a user. Deleting an admin cascades to their pharmacy and its
// medicines.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	db := h.db.WithContext(c.Request().Context())

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user not found", services.ErrNotFound)
		}
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if user.Role == models.RoleAdmin && user.PharmacyID != nil {
			if err := tx.Where("pharmacy_id = ?", *user.PharmacyID).
				Delete(&models.Medicine{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Pharmacy{}, *user.PharmacyID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, successMessage("User deleted successfully"))
}
