package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pharmaplus_echo/internal/models"
	"pharmaplus_echo/internal/services"
)

// PharmacyHandler handles pharmacy CRUD and per-pharmacy analytics
type PharmacyHandler struct {
	db       *gorm.DB
	location *services.LocationService
}

func NewPharmacyHandler(db *gorm.DB, location *services.LocationService) *PharmacyHandler {
	return &PharmacyHandler{db: db, location: location}
}

type createPharmacyRequest struct {
	Name        string                `json:"name"`
	License     string                `json:"license"`
	Contact     string                `json:"contact"`
	Email       string                `json:"email"`
	Address     string                `json:"address"`
	Position    *models.Position      `json:"position"`
	Status      models.PharmacyStatus `json:"status"`
	Description string                `json:"description"`
	ManagerID   *uint                 `json:"managerId"`
}

// Create registers a new pharmacy. Missing coordinates are geocoded from the
// address when one is given.
func (h *PharmacyHandler) Create(c echo.Context) error {
	var req createPharmacyRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", services.ErrValidation)
	}

	status := req.Status
	if status == "" {
		status = models.PharmacyStatusInactive
	}

	pharmacy := models.Pharmacy{
		Name:        req.Name,
		License:     req.License,
		Contact:     req.Contact,
		Email:       req.Email,
		Address:     req.Address,
		Position:    req.Position,
		Status:      status,
		Description: req.Description,
		ManagerID:   req.ManagerID,
	}

	if pharmacy.Address != "" && pharmacy.Position == nil {
		pharmacy.Position = h.location.GeocodeAddress(pharmacy.Address)
	}

	if err := h.db.WithContext(c.Request().Context()).Create(&pharmacy).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, success(map[string]interface{}{"pharmacy": pharmacy}))
}

// List returns pharmacies, paginated.
func (h *PharmacyHandler) List(c echo.Context) error {
	_, limit, offset := pagination(c)

	var pharmacies []models.Pharmacy
	err := h.db.WithContext(c.Request().Context()).
		Offset(offset).Limit(limit).Find(&pharmacies).Error
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"pharmacies": pharmacies}))
}

func (h *PharmacyHandler) load(c echo.Context) (*models.Pharmacy, error) {
	id, err := idParam(c, "id")
	if err != nil {
		return nil, err
	}
	var pharmacy models.Pharmacy
	if err := h.db.WithContext(c.Request().Context()).First(&pharmacy, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pharmacy not found", services.ErrNotFound)
		}
		return nil, err
	}
	return &pharmacy, nil
}

// Get returns a single pharmacy by id.
func (h *PharmacyHandler) Get(c echo.Context) error {
	pharmacy, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(map[string]interface{}{"pharmacy": pharmacy}))
}

// Update applies a partial update. A changed address without explicit
// coordinates is re-geocoded and must resolve; contact-field changes are
// mirrored onto the managing admin.
func (h *PharmacyHandler) Update(c echo.Context) error {
	pharmacy, err := h.load(c)
	if err != nil {
		return err
	}

	var patch models.PharmacyPatch
	if err := c.Bind(&patch); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}

	if patch.Address != nil && patch.Position == nil {
		position := h.location.GeocodeAddress(*patch.Address)
		if position == nil {
			return fmt.Errorf("%w: could not determine location from address, please provide a valid address or coordinates", services.ErrValidation)
		}
		patch.Position = position
	}

	patch.Apply(pharmacy)

	db := h.db.WithContext(c.Request().Context())
	if err := db.Save(pharmacy).Error; err != nil {
		return err
	}

	if err := services.SyncFromPharmacy(db, pharmacy, patch); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"pharmacy": pharmacy}))
}

// Delete removes a pharmacy together with its medicines and its managing
// admin account.
func (h *PharmacyHandler) Delete(c echo.Context) error {
	pharmacy, err := h.load(c)
	if err != nil {
		return err
	}

	err = h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pharmacy_id = ?", pharmacy.ID).
			Delete(&models.Medicine{}).Error; err != nil {
			return err
		}
		if pharmacy.ManagerID != nil {
			if err := tx.Delete(&models.User{}, *pharmacy.ManagerID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(pharmacy).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, successMessage("Pharmacy deleted successfully"))
}

// Medicines returns the pharmacy's medicines.
func (h *PharmacyHandler) Medicines(c echo.Context) error {
	id, err := idParam(c, "id")
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

// Dashboard recomputes and returns the pharmacy's aggregate snapshot.
func (h *PharmacyHandler) Dashboard(c echo.Context) error {
	pharmacy, err := h.load(c)
	if err != nil {
		return err
	}

	stats, err := services.CalculatePharmacyStats(c.Request().Context(), h.db, pharmacy.ID)
	if err != nil {
		return err
	}

	// The recompute just persisted fresh aggregates; reload so the embedded
	// pharmacy does not carry the pre-recompute cached fields.
	if err := h.db.WithContext(c.Request().Context()).First(pharmacy, pharmacy.ID).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{
		"pharmacy":  pharmacy,
		"analytics": stats,
	}))
}

type topMedicine struct {
	MedicineID uint `json:"medicineId"`
	Quantity   int  `json:"quantity"`
}

// TopMedicines ranks the pharmacy's medicines by quantity ordered, top 10.
func (h *PharmacyHandler) TopMedicines(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var orders []models.Order
	err = h.db.WithContext(c.Request().Context()).
		Where("pharmacy_id = ?", id).Find(&orders).Error
	if err != nil {
		return err
	}

	quantities := make(map[uint]int)
	for _, o := range orders {
		for _, item := range o.Items {
			quantities[item.MedicineID] += item.Quantity
		}
	}

	top := make([]topMedicine, 0, len(quantities))
	for medicineID, qty := range quantities {
		top = append(top, topMedicine{MedicineID: medicineID, Quantity: qty})
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Quantity > top[j].Quantity })
	if len(top) > 10 {
		top = top[:10]
	}

	return c.JSON(http.StatusOK, Response{
		Status: "success",
		Data: map[string]interface{}{
			"pharmacyId":   id,
			"topMedicines": top,
		},
	})
}

// SalesByCategory sums revenue per medicine category across the pharmacy's
// orders, priced at the current medicine price.
func (h *PharmacyHandler) SalesByCategory(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	db := h.db.WithContext(c.Request().Context())

	var orders []models.Order
	if err := db.Where("pharmacy_id = ?", id).Find(&orders).Error; err != nil {
		return err
	}

	var medicines []models.Medicine
	if err := db.Where("pharmacy_id = ?", id).Find(&medicines).Error; err != nil {
		return err
	}
	categories := make(map[uint]string, len(medicines))
	prices := make(map[uint]float64, len(medicines))
	for _, m := range medicines {
		categories[m.ID] = m.Category
		prices[m.ID] = m.Price
	}

	salesByCategory := make(map[string]float64)
	for _, o := range orders {
		for _, item := range o.Items {
			category, ok := categories[item.MedicineID]
			if !ok {
				continue
			}
			if category == "" {
				category = "Uncategorized"
			}
			salesByCategory[category] += prices[item.MedicineID] * float64(item.Quantity)
		}
	}

	return c.JSON(http.StatusOK, Response{
		Status: "success",
		Data: map[string]interface{}{
			"pharmacyId":      id,
			"salesByCategory": salesByCategory,
		},
	})
}

type lowStockMedicine struct {
	MedicineID   uint                  `json:"medicineId"`
	Name         string                `json:"name"`
	Category     string                `json:"category"`
	CurrentStock int                   `json:"currentStock"`
	Threshold    int                   `json:"threshold"`
	Status       models.MedicineStatus `json:"status"`
	UnitsBelow   int                   `json:"unitsBelow"`
}

// LowStockAlerts lists the pharmacy's medicines at or below their threshold.
func (h *PharmacyHandler) LowStockAlerts(c echo.Context) error {
	pharmacy, err := h.load(c)
	if err != nil {
		return err
	}

	var medicines []models.Medicine
	err = h.db.WithContext(c.Request().Context()).
		Where("pharmacy_id = ?", pharmacy.ID).Find(&medicines).Error
	if err != nil {
		return err
	}

	lowStock := make([]lowStockMedicine, 0)
	for _, m := range medicines {
		if m.Stock > m.Threshold {
			continue
		}
		lowStock = append(lowStock, lowStockMedicine{
			MedicineID:   m.ID,
			Name:         m.Name,
			Category:     m.Category,
			CurrentStock: m.Stock,
			Threshold:    m.Threshold,
			Status:       m.Status,
			UnitsBelow:   m.Threshold - m.Stock,
		})
	}

	return c.JSON(http.StatusOK, Response{
		Status: "success",
		Data: map[string]interface{}{
			"pharmacyId":               pharmacy.ID,
			"pharmacyName":             pharmacy.Name,
			"totalMedicinesInPharmacy": len(medicines),
			"totalLowStockMedicines":   len(lowStock),
			"lowStockMedicines":        lowStock,
		},
	})
}

type topCustomer struct {
	UserID     uint    `json:"userId"`
	TotalSpent float64 `json:"totalSpent"`
}

// CustomerAnalytics returns the pharmacy's aggregate snapshot plus its top 10
// customers by total spend.
func (h *PharmacyHandler) CustomerAnalytics(c echo.Context) error {
	pharmacy, err := h.load(c)
	if err != nil {
		return err
	}

	stats, err := services.CalculatePharmacyStats(c.Request().Context(), h.db, pharmacy.ID)
	if err != nil {
		return err
	}

	var orders []models.Order
	err = h.db.WithContext(c.Request().Context()).
		Where("pharmacy_id = ?", pharmacy.ID).Find(&orders).Error
	if err != nil {
		return err
	}

	spend := make(map[uint]float64)
	for _, o := range orders {
		spend[o.UserID] += services.ParseOrderTotal(o.Total)
	}

	customers := make([]topCustomer, 0, len(spend))
	for userID, total := range spend {
		customers = append(customers, topCustomer{UserID: userID, TotalSpent: total})
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].TotalSpent > customers[j].TotalSpent })
	if len(customers) > 10 {
		customers = customers[:10]
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{
		"pharmacyId":       pharmacy.ID,
		"pharmacy":         pharmacy.Name,
		"totalOrders":      stats.TotalOrders,
		"totalSales":       stats.TotalSales,
		"noOfCustomers":    stats.NoOfCustomers,
		"productsInStock":  stats.ProductsInStock,
		"last7MonthsSales": stats.Last7MonthsSales,
		"topCustomers":     customers,
	}))
}
