package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"pharmaplus_echo/internal/models"
)

// OrderNotifier sends best-effort order notifications. Failures are logged
// and retried through the task queue; they never fail the triggering request.
type OrderNotifier interface {
	SendOrderPlacedEmail(order *models.Order, user *models.User, pharmacy *models.Pharmacy) error
	SendOrderDeliveredEmail(order *models.Order, user *models.User, pharmacy *models.Pharmacy) error
}

// OrderService validates and places orders and drives status transitions.
type OrderService struct {
	db       *gorm.DB
	notifier OrderNotifier
}

func NewOrderService(db *gorm.DB, notifier OrderNotifier) *OrderService {
	return &OrderService{db: db, notifier: notifier}
}

// OrderItemInput is one requested line of a new order
type OrderItemInput struct {
	MedicineID uint `json:"medicine"`
	Quantity   int  `json:"quantity"`
}

// CreateOrderInput is the payload for placing an order
type CreateOrderInput struct {
	UserID        uint                `json:"userId"`
	PharmacyID    uint                `json:"pharmacyId"`
	Items         []OrderItemInput    `json:"items"`
	Address       models.OrderAddress `json:"address"`
	PaymentMethod string              `json:"paymentMethod"`
	Total         string              `json:"total"`
}

// CreateOrder validates the whole order before any mutation, then persists
// the order and decrements stock in a single transaction. Each decrement is
// conditional (stock >= quantity checked by the database), so concurrent
// orders can never drive stock negative; if any item loses the race the
// transaction rolls back and nothing is committed.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if in.UserID == 0 {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if in.PharmacyID == 0 {
		return nil, fmt.Errorf("%w: pharmacyId is required", ErrValidation)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: items array is required and cannot be empty", ErrValidation)
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, in.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}

	var pharmacy models.Pharmacy
	if err := db.First(&pharmacy, in.PharmacyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pharmacy not found", ErrNotFound)
		}
		return nil, err
	}
	if pharmacy.Status != models.PharmacyStatusActive {
		return nil, fmt.Errorf("%w: pharmacy is not active, cannot place order", ErrInvalidState)
	}

	// Validate every item before touching anything.
	medicines := make([]models.Medicine, 0, len(in.Items))
	for _, item := range in.Items {
		if item.MedicineID == 0 {
			return nil, fmt.Errorf("%w: medicine id is required for all items", ErrValidation)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be greater than 0 for all items", ErrValidation)
		}

		var medicine models.Medicine
		if err := db.First(&medicine, item.MedicineID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: medicine with id %d not found", ErrNotFound, item.MedicineID)
			}
			return nil, err
		}
		if medicine.PharmacyID != in.PharmacyID {
			return nil, fmt.Errorf("%w: medicine %s does not belong to this pharmacy", ErrInvalidState, medicine.Name)
		}
		if medicine.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: not enough stock for medicine %s. Available: %d, Requested: %d",
				ErrInsufficientStock, medicine.Name, medicine.Stock, item.Quantity)
		}
		medicines = append(medicines, medicine)
	}

	order := &models.Order{
		UserID:        in.UserID,
		PharmacyID:    in.PharmacyID,
		Date:          time.Now().Format("2006-01-02"),
		Status:        models.OrderStatusPending,
		Total:         in.Total,
		PaymentMethod: in.PaymentMethod,
		Address:       in.Address,
		Items:         make([]models.OrderItem, 0, len(in.Items)),
	}
	for i, item := range in.Items {
		order.Items = append(order.Items, models.OrderItem{
			MedicineID: item.MedicineID,
			Name:       medicines[i].Name,
			Price:      medicines[i].Price,
			Quantity:   item.Quantity,
		})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, item := range in.Items {
			res := tx.Model(&models.Medicine{}).
				Where("id = ? AND stock >= ?", item.MedicineID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Lost a race against a concurrent order.
				return fmt.Errorf("%w: not enough stock for medicine id %d", ErrInsufficientStock, item.MedicineID)
			}

			var medicine models.Medicine
			if err := tx.First(&medicine, item.MedicineID).Error; err != nil {
				return err
			}
			status := models.CalculateMedicineStatus(medicine.Stock, medicine.Threshold)
			if status != medicine.Status {
				if err := tx.Model(&medicine).UpdateColumn("status", status).Error; err != nil {
					return err
				}
			}
			if status != models.MedicineStatusAvailable {
				alert := models.StockAlert{
					MedicineID:   medicine.ID,
					PharmacyID:   medicine.PharmacyID,
					StockAtAlert: medicine.Stock,
					Threshold:    medicine.Threshold,
					Status:       status,
				}
				if err := tx.Create(&alert).Error; err != nil {
					return err
				}
			}
		}

		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyAsync("placed", order, &user, &pharmacy)

	return order, nil
}

// UpdateOrderStatus moves an order along its lifecycle. Only forward
// transitions are allowed; Cancelled is reachable from any non-terminal
// state. Delivery triggers a best-effort notification.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint, newStatus models.OrderStatus) (*models.Order, error) {
	if !models.IsValidOrderStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrValidation, newStatus)
	}

	db := s.db.WithContext(ctx)

	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return nil, err
	}

	if !order.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidState, order.Status, newStatus)
	}

	order.Status = newStatus
	if err := db.Save(&order).Error; err != nil {
		return nil, err
	}

	if newStatus == models.OrderStatusDelivered {
		var user models.User
		var pharmacy models.Pharmacy
		if err := db.First(&user, order.UserID).Error; err == nil {
			_ = db.First(&pharmacy, order.PharmacyID).Error
			s.notifyAsync("delivered", &order, &user, &pharmacy)
		}
	}

	return &order, nil
}

// notifyAsync dispatches an order notification off the request path. A send
// failure is logged and queued for retry through the scheduled-task worker;
// it never affects the outcome of the triggering operation.
func (s *OrderService) notifyAsync(kind string, order *models.Order, user *models.User, pharmacy *models.Pharmacy) {
	if s.notifier == nil || user.Email == "" {
		return
	}

	orderCopy := *order
	userCopy := *user
	pharmacyCopy := *pharmacy

	go func() {
		var err error
		switch kind {
		case "placed":
			err = s.notifier.SendOrderPlacedEmail(&orderCopy, &userCopy, &pharmacyCopy)
		case "delivered":
			err = s.notifier.SendOrderDeliveredEmail(&orderCopy, &userCopy, &pharmacyCopy)
		}
		if err != nil {
			log.Printf("orders: failed to send %s email for order %d: %v", kind, orderCopy.ID, err)
			s.queueEmailRetry(kind, orderCopy.ID)
		}
	}()
}

// queueEmailRetry records a one-shot task so the worker can retry a failed
// notification later.
func (s *OrderService) queueEmailRetry(kind string, orderID uint) {
	task := models.ScheduledTask{
		TaskName: "send_order_email",
		Arguments: map[string]interface{}{
			"kind":     kind,
			"order_id": float64(orderID),
		},
		Due:        time.Now().Add(5 * time.Minute),
		Status:     models.ScheduledTaskStatusActive,
		TaskType:   models.ScheduledTaskTypeOneTime,
		MaxAttempt: 3,
	}
	if err := s.db.Create(&task).Error; err != nil {
		log.Printf("orders: failed to queue %s email retry for order %d: %v", kind, orderID, err)
	}
}
