package services

import (
	"context"
	"errors"
	"testing"

	"pharmaplus_echo/internal/models"
)

func TestCreateOrderDecrementsStockAndRecomputesStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil)

	user := createTestUser(t, db, &models.User{Email: "buyer@example.com"})
	pharmacy := createTestPharmacy(t, db, &models.Pharmacy{
		Name:   "City Pharmacy",
		Status: models.PharmacyStatusActive,
	})
	medicine := createTestMedicine(t, db, &models.Medicine{
		Name:       "Paracetamol",
		Price:      12.5,
		Stock:      12,
		Threshold:  10,
		PharmacyID: pharmacy.ID,
	})

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:     user.ID,
		PharmacyID: pharmacy.ID,
		Items: []OrderItemInput{
			{MedicineID: medicine.ID, Quantity: 4},
		},
		Total:         "50",
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.Status != models.OrderStatusPending {
		t.Errorf("status = %q; want Pending", order.Status)
	}
	if order.Date == "" {
		t.Error("date not set")
	}
	if len(order.Items) != 1 {
		t.Fatalf("items = %d; want 1", len(order.Items))
	}
	if order.Items[0].Name != "Paracetamol" || order.Items[0].Price != 12.5 {
		t.Errorf("item snapshot = %+v; want name and price copied", order.Items[0])
	}

	var got models.Medicine
	db.First(&got, medicine.ID)
	if got.Stock != 8 {
		t.Errorf("stock = %d; want 8", got.Stock)
	}
	// 8 <= threshold 10, the decrement must flip the status.
	if got.Status != models.MedicineStatusLowStock {
		t.Errorf("status = %q; want lowStock", got.Status)
	}

	var alerts []models.StockAlert
	db.Find(&alerts)
	if len(alerts) != 1 {
		t.Fatalf("stock alerts = %d; want 1", len(alerts))
	}
	if alerts[0].MedicineID != medicine.ID || alerts[0].StockAtAlert != 8 {
		t.Errorf("alert = %+v; want medicine %d at stock 8", alerts[0], medicine.ID)
	}
}

func TestCreateOrderInsufficientStockLeavesNothingBehind(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil)

	user := createTestUser(t, db, &models.User{Email: "buyer@example.com"})
	pharmacy := createTestPharmacy(t, db, &models.Pharmacy{
		Status: models.PharmacyStatusActive,
	})
	plenty := createTestMedicine(t, db, &models.Medicine{
		Name: "Ibuprofen", Stock: 100, Threshold: 5, PharmacyID: pharmacy.ID,
	})
	scarce := createTestMedicine(t, db, &models.Medicine{
		Name: "Insulin", Stock: 2, Threshold: 5, PharmacyID: pharmacy.ID,
	})

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:     user.ID,
		PharmacyID: pharmacy.ID,
		Items: []OrderItemInput{
			{MedicineID: plenty.ID, Quantity: 10},
			{MedicineID: scarce.ID, Quantity: 5},
		},
		Total: "100",
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v; want ErrInsufficientStock", err)
	}

	// All-or-nothing: the first item's stock must be untouched too.
	var got models.Medicine
	db.First(&got, plenty.ID)
	if got.Stock != 100 {
		t.Errorf("stock = %d; want 100 after rollback", got.Stock)
	}

	var count int64
	db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Errorf("orders = %d; want 0", count)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil)

	user := createTestUser(t, db, &models.User{Email: "buyer@example.com"})
	active := createTestPharmacy(t, db, &models.Pharmacy{Status: models.PharmacyStatusActive})
	inactive := createTestPharmacy(t, db, &models.Pharmacy{Status: models.PharmacyStatusInactive})
	medicine := createTestMedicine(t, db, &models.Medicine{
		Name: "Vitamin C", Stock: 50, Threshold: 5, PharmacyID: active.ID,
	})
	foreign := createTestMedicine(t, db, &models.Medicine{
		Name: "Foreign", Stock: 50, Threshold: 5, PharmacyID: inactive.ID,
	})

	tests := []struct {
		name     string
		input    CreateOrderInput
		expected error
	}{
		{
			name:     "missing user",
			input:    CreateOrderInput{PharmacyID: active.ID, Items: []OrderItemInput{{MedicineID: medicine.ID, Quantity: 1}}},
			expected: ErrValidation,
		},
		{
			name:     "missing items",
			input:    CreateOrderInput{UserID: user.ID, PharmacyID: active.ID},
			expected: ErrValidation,
		},
		{
			name: "zero quantity",
			input: CreateOrderInput{UserID: user.ID, PharmacyID: active.ID,
				Items: []OrderItemInput{{MedicineID: medicine.ID, Quantity: 0}}},
			expected: ErrValidation,
		},
		{
			name: "unknown user",
			input: CreateOrderInput{UserID: 9999, PharmacyID: active.ID,
				Items: []OrderItemInput{{MedicineID: medicine.ID, Quantity: 1}}},
			expected: ErrNotFound,
		},
		{
			name: "inactive pharmacy",
			input: CreateOrderInput{UserID: user.ID, PharmacyID: inactive.ID,
				Items: []OrderItemInput{{MedicineID: foreign.ID, Quantity: 1}}},
			expected: ErrInvalidState,
		},
		{
			name: "medicine from another pharmacy",
			input: CreateOrderInput{UserID: user.ID, PharmacyID: active.ID,
				Items: []OrderItemInput{{MedicineID: foreign.ID, Quantity: 1}}},
			expected: ErrInvalidState,
		},
		{
			name: "unknown medicine",
			input: CreateOrderInput{UserID: user.ID, PharmacyID: active.ID,
				Items: []OrderItemInput{{MedicineID: 9999, Quantity: 1}}},
			expected: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), tt.input)
			if !errors.Is(err, tt.expected) {
				t.Errorf("err = %v; want %v", err, tt.expected)
			}
		})
	}
}

func TestUpdateOrderStatusForwardOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil)

	newOrder := func(status models.OrderStatus) *models.Order {
		order := &models.Order{Status: status, Total: "10"}
		if err := db.Create(order).Error; err != nil {
			t.Fatalf("create order: %v", err)
		}
		return order
	}

	t.Run("forward move succeeds", func(t *testing.T) {
		order := newOrder(models.OrderStatusPending)
		updated, err := svc.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusShipped)
		if err != nil {
			t.Fatalf("UpdateOrderStatus: %v", err)
		}
		if updated.Status != models.OrderStatusShipped {
			t.Errorf("status = %q; want Shipped", updated.Status)
		}
	})

	t.Run("backward move rejected", func(t *testing.T) {
		order := newOrder(models.OrderStatusShipped)
		_, err := svc.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusProcessing)
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("err = %v; want ErrInvalidState", err)
		}
	})

	t.Run("terminal order is frozen", func(t *testing.T) {
		order := newOrder(models.OrderStatusDelivered)
		_, err := svc.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusCancelled)
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("err = %v; want ErrInvalidState", err)
		}
	})

	t.Run("cancel from open state", func(t *testing.T) {
		order := newOrder(models.OrderStatusProcessing)
		updated, err := svc.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusCancelled)
		if err != nil {
			t.Fatalf("UpdateOrderStatus: %v", err)
		}
		if updated.Status != models.OrderStatusCancelled {
			t.Errorf("status = %q; want Cancelled", updated.Status)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		order := newOrder(models.OrderStatusPending)
		_, err := svc.UpdateOrderStatus(context.Background(), order.ID, "Refunded")
		if !errors.Is(err, ErrValidation) {
			t.Errorf("err = %v; want ErrValidation", err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := svc.UpdateOrderStatus(context.Background(), 99999, models.OrderStatusShipped)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v; want ErrNotFound", err)
		}
	})
}

func TestCreateOrderOutOfStockAlert(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil)

	user := createTestUser(t, db, &models.User{Email: "buyer@example.com"})
	pharmacy := createTestPharmacy(t, db, &models.Pharmacy{Status: models.PharmacyStatusActive})
	medicine := createTestMedicine(t, db, &models.Medicine{
		Name: "Last Box", Stock: 3, Threshold: 2, PharmacyID: pharmacy.ID,
	})

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:     user.ID,
		PharmacyID: pharmacy.ID,
		Items:      []OrderItemInput{{MedicineID: medicine.ID, Quantity: 3}},
		Total:      "30",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	var got models.Medicine
	db.First(&got, medicine.ID)
	if got.Stock != 0 {
		t.Fatalf("stock = %d; want 0", got.Stock)
	}
	if got.Status != models.MedicineStatusOutOfStock {
		t.Errorf("status = %q; want outOfStock", got.Status)
	}

	var alert models.StockAlert
	if err := db.First(&alert).Error; err != nil {
		t.Fatalf("expected a stock alert: %v", err)
	}
	if alert.Status != models.MedicineStatusOutOfStock {
		t.Errorf("alert status = %q; want outOfStock", alert.Status)
	}
}
