package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pharmaplus_echo/internal/models"
	"pharmaplus_echo/internal/services"
)

// dashboardCacheKey is the cached platform dashboard entry invalidated on
// every order write.
const dashboardCacheKey = "dashboard:platform"

// OrderHandler handles order placement and lifecycle endpoints
type OrderHandler struct {
	db       *gorm.DB
	orders   *services.OrderService
	payments *services.PaymentService
	cache    *services.RedisCache
}

func NewOrderHandler(db *gorm.DB, orders *services.OrderService, payments *services.PaymentService, cache *services.RedisCache) *OrderHandler {
	return &OrderHandler{db: db, orders: orders, payments: payments, cache: cache}
}

func (h *OrderHandler) invalidateDashboard(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(ctx, dashboardCacheKey); err != nil {
		log.Printf("orders: failed to invalidate dashboard cache: %v", err)
	}
}

// Create places a new order.
func (h *OrderHandler) Create(c echo.Context) error {
	var in services.CreateOrderInput
	if err := c.Bind(&in); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}

	order, err := h.orders.CreateOrder(c.Request().Context(), in)
	if err != nil {
		return err
	}

	h.invalidateDashboard(c.Request().Context())

	return c.JSON(http.StatusCreated, success(map[string]interface{}{"order": order}))
}

// List returns orders, newest first, paginated.
func (h *OrderHandler) List(c echo.Context) error {
	_, limit, offset := pagination(c)

	var orders []models.Order
	err := h.db.WithContext(c.Request().Context()).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"orders": orders}))
}

// Get returns a single order by id.
func (h *OrderHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var order models.Order
	if err := h.db.WithContext(c.Request().Context()).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order not found", services.ErrNotFound)
		}
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"order": order}))
}

// ByUser returns one user's orders, newest first, paginated.
func (h *OrderHandler) ByUser(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	_, limit, offset := pagination(c)

	var orders []models.Order
	err = h.db.WithContext(c.Request().Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"orders": orders}))
}

// ByPharmacy returns one pharmacy's orders, most recently updated first,
// paginated.
func (h *OrderHandler) ByPharmacy(c echo.Context) error {
	pharmacyID, err := idParam(c, "pharmacyId")
	if err != nil {
		return err
	}
	_, limit, offset := pagination(c)

	var orders []models.Order
	err = h.db.WithContext(c.Request().Context()).
		Where("pharmacy_id = ?", pharmacyID).
		Order("updated_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{"orders": orders}))
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// UpdateStatus moves an order along its lifecycle.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}

	order, err := h.orders.UpdateOrderStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}

	h.invalidateDashboard(c.Request().Context())

	return c.JSON(http.StatusOK, success(map[string]interface{}{"order": order}))
}

// Delete removes an order record.
func (h *OrderHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	res := h.db.WithContext(c.Request().Context()).Delete(&models.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order not found", services.ErrNotFound)
	}

	h.invalidateDashboard(c.Request().Context())

	return c.JSON(http.StatusOK, successMessage("Order deleted successfully"))
}

// Pay opens a payment session for a pending order and returns the redirect
// URL.
func (h *OrderHandler) Pay(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	db := h.db.WithContext(c.Request().Context())

	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order not found", services.ErrNotFound)
		}
		return err
	}

	var user models.User
	if err := db.First(&user, order.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user not found", services.ErrNotFound)
		}
		return err
	}

	resp, err := h.payments.CreateTransaction(&order, &user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(map[string]interface{}{
		"token":       resp.Token,
		"redirectUrl": resp.RedirectURL,
	}))
}

type paymentNotification struct {
	OrderID string `json:"order_id"`
}

// PaymentCallback receives payment gateway notifications.
func (h *OrderHandler) PaymentCallback(c echo.Context) error {
	var notif paymentNotification
	if err := c.Bind(&notif); err != nil {
		return fmt.Errorf("%w: invalid notification body", services.ErrValidation)
	}
	if notif.OrderID == "" {
		return fmt.Errorf("%w: order_id is required", services.ErrValidation)
	}

	if err := h.payments.HandleNotification(c.Request().Context(), notif.OrderID); err != nil {
		return err
	}

	h.invalidateDashboard(c.Request().Context())

	return c.JSON(http.StatusOK, successMessage("notification processed"))
}
