package models

import (
	"testing"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"pending to processing", OrderStatusPending, OrderStatusProcessing, true},
		{"pending to shipped skips a step", OrderStatusPending, OrderStatusShipped, true},
		{"pending to delivered skips steps", OrderStatusPending, OrderStatusDelivered, true},
		{"processing to shipped", OrderStatusProcessing, OrderStatusShipped, true},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"processing back to pending", OrderStatusProcessing, OrderStatusPending, false},
		{"shipped back to processing", OrderStatusShipped, OrderStatusProcessing, false},
		{"delivered to shipped", OrderStatusDelivered, OrderStatusShipped, false},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"shipped to cancelled", OrderStatusShipped, OrderStatusCancelled, true},
		{"delivered to cancelled", OrderStatusDelivered, OrderStatusCancelled, false},
		{"cancelled to processing", OrderStatusCancelled, OrderStatusProcessing, false},
		{"same status is not a transition", OrderStatusProcessing, OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("%s -> %s = %v; want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	terminal := []OrderStatus{OrderStatusDelivered, OrderStatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	open := []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled,
	} {
		if !IsValidOrderStatus(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	if IsValidOrderStatus("Refunded") {
		t.Error("unknown status should not be valid")
	}
}
