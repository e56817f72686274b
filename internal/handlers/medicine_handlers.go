package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pharmaplus_echo/internal/models"
	"pharmaplus_echo/internal/services"
)

// MedicineHandler handles the medicine catalog
type MedicineHandler struct {
	db *gorm.DB
}

func NewMedicineHandler(db *gorm.DB) *MedicineHandler {
	return &MedicineHandler{db: db}
}

type paginationMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// List returns medicines with pagination metadata.
func (h *MedicineHandler) List(c echo.Context) error {
	page, limit, offset := pagination(c)

	db := h.db.WithContext(c.Request().Context())

	var total int64
	if err := db.Model(&models.Medicine{}).Count(&total).Error; err != nil {
		return err
	}

	var medicines []models.Medicine
	if err := db.Offset(offset).Limit(limit).Find(&medicines).Error; err != nil {
		return err
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{
		"medicines": medicines,
		"pagination": paginationMeta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}))
}

// Get returns a single medicine by id.
func (h *MedicineHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var medicine models.Medicine
	err = h.db.WithContext(c.Request().Context()).
		Preload("Pharmacy").First(&medicine, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: medicine not found", services.ErrNotFound)
		}
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"medicine": medicine}))
}

type createMedicineRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Threshold   int     `json:"threshold"`
	Description string  `json:"description"`
	PharmacyID  uint    `json:"pharmacy"`
}

// Create adds a medicine to a pharmacy's catalog. The availability status is
// derived from stock and threshold, and a new category is appended to the
// pharmacy's category list.
func (h *MedicineHandler) Create(c echo.Context) error {
	var req createMedicineRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", services.ErrValidation)
	}
	if req.PharmacyID == 0 {
		return fmt.Errorf("%w: pharmacy is required", services.ErrValidation)
	}
	if req.Stock < 0 || req.Threshold < 0 {
		return fmt.Errorf("%w: stock and threshold cannot be negative", services.ErrValidation)
	}

	db := h.db.WithContext(c.Request().Context())

	var pharmacy models.Pharmacy
	if err := db.First(&pharmacy, req.PharmacyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: pharmacy not found", services.ErrNotFound)
		}
		return err
	}

	medicine := models.Medicine{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Threshold:   req.Threshold,
		Status:      models.CalculateMedicineStatus(req.Stock, req.Threshold),
		Description: req.Description,
		PharmacyID:  req.PharmacyID,
	}

	if err := db.Create(&medicine).Error; err != nil {
		return err
	}

	if pharmacy.AddCategory(medicine.Category) {
		if err := db.Save(&pharmacy).Error; err != nil {
			return err
		}
	}

	return c.JSON(http.StatusCreated, success(map[string]interface{}{"medicine": medicine}))
}

// Update applies a partial update. Status is recomputed from the merged
// stock/threshold values; a changed category is appended to the pharmacy.
func (h *MedicineHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var patch models.MedicinePatch
	if err := c.Bind(&patch); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", services.ErrValidation)
	}
	if patch.Threshold != nil && *patch.Threshold < 0 {
		return fmt.Errorf("%w: threshold cannot be negative", services.ErrValidation)
	}

	db := h.db.WithContext(c.Request().Context())

	var medicine models.Medicine
	if err := db.First(&medicine, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: medicine not found", services.ErrNotFound)
		}
		return err
	}

	oldCategory := medicine.Category
	patch.Apply(&medicine)

	if err := db.Save(&medicine).Error; err != nil {
		return err
	}

	if patch.Category != nil && *patch.Category != oldCategory {
		var pharmacy models.Pharmacy
		if err := db.First(&pharmacy, medicine.PharmacyID).Error; err == nil {
			if pharmacy.AddCategory(*patch.Category) {
				if err := db.Save(&pharmacy).Error; err != nil {
					return err
				}
			}
		}
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"medicine": medicine}))
}

// Delete removes a medicine.
func (h *MedicineHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	db := h.db.WithContext(c.Request().Context())

	res := db.Delete(&models.Medicine{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: medicine not found", services.ErrNotFound)
	}

	return c.JSON(http.StatusOK, successMessage("Medicine deleted successfully"))
}

// LowStock lists every medicine at or below its threshold, platform-wide.
func (h *MedicineHandler) LowStock(c echo.Context) error {
	var medicines []models.Medicine
	err := h.db.WithContext(c.Request().Context()).
		Where("stock <= threshold").Find(&medicines).Error
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"medicines": medicines}))
}

// LowStockByPharmacy lists one pharmacy's medicines at or below threshold.
func (h *MedicineHandler) LowStockByPharmacy(c echo.Context) error {
	id, err := idParam(c, "pharmacyId")
	if err != nil {
		return err
	}

	db := h.db.WithContext(c.Request().Context())

	var pharmacy models.Pharmacy
	if err := db.First(&pharmacy, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: pharmacy not found", services.ErrNotFound)
		}
		return err
	}

	var medicines []models.Medicine
	err = db.Where("pharmacy_id = ? AND stock <= threshold", id).Find(&medicines).Error
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{
		"pharmacy":      pharmacy.Name,
		"lowStockCount": len(medicines),
		"medicines":     medicines,
	}))
}

// ByPharmacy lists a pharmacy's medicines.
func (h *MedicineHandler) ByPharmacy(c echo.Context) error {
	id, err := idParam(c, "pharmacyId")
	if err != nil {
		return err
	}

	var medicines []models.Medicine
	err = h.db.WithContext(c.Request().Context()).
		Where("pharmacy_id = ?", id).Find(&medicines).Error
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"medicines": medicines}))
}

type medicineWithDistance struct {
	models.Medicine
	PharmacyName string           `json:"pharmacyName"`
	Position     *models.Position `json:"pharmacyPosition"`
	Distance     float64          `json:"distance"`
}

// Search finds medicines by name near the caller's location, sorted by
// distance to the selling pharmacy.
func (h *MedicineHandler) Search(c echo.Context) error {
	name := c.QueryParam("name")

	lat, latErr := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if latErr != nil || lngErr != nil {
		return fmt.Errorf("%w: user location (lat, lng) is required", services.ErrValidation)
	}

	var medicines []models.Medicine
	err := h.db.WithContext(c.Request().Context()).
		Preload("Pharmacy").
		Where("name LIKE ?", "%"+name+"%").
		Find(&medicines).Error
	if err != nil {
		return err
	}

	results := make([]medicineWithDistance, 0, len(medicines))
	for _, m := range medicines {
		if m.Pharmacy == nil || m.Pharmacy.Position == nil {
			continue
		}
		results = append(results, medicineWithDistance{
			Medicine:     m,
			PharmacyName: m.Pharmacy.Name,
			Position:     m.Pharmacy.Position,
			Distance: services.CalculateDistance(
				lat, lng, m.Pharmacy.Position.Lat, m.Pharmacy.Position.Lng),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })

	return c.JSON(http.StatusOK, success(map[string]interface{}{"medicines": results}))
}
