package tasks

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pharmaplus_echo/internal/models"
	"pharmaplus_echo/internal/services"
)

// SendOrderEmailTaskName retries an order notification that failed on the
// request path.
const SendOrderEmailTaskName = "send_order_email"

// SendOrderEmailHandler re-sends an order email. The order, user, and
// pharmacy are re-loaded so the retry reflects current data.
func SendOrderEmailHandler(ctx context.Context, db *gorm.DB, args map[string]interface{}) (map[string]interface{}, error) {
	orderID, err := uintArg(args, "order_id")
	if err != nil {
		return nil, err
	}

	kind, _ := args["kind"].(string)
	if kind != "placed" && kind != "delivered" {
		return nil, fmt.Errorf("unknown email kind %q", kind)
	}

	tx := db.WithContext(ctx)

	var order models.Order
	if err := tx.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Order deleted since queuing; nothing to send.
			return map[string]interface{}{"status": "skipped", "reason": "order deleted"}, nil
		}
		return nil, err
	}

	var user models.User
	if err := tx.First(&user, order.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Email == "" {
		return map[string]interface{}{"status": "skipped", "reason": "user has no email"}, nil
	}

	var pharmacy models.Pharmacy
	if err := tx.First(&pharmacy, order.PharmacyID).Error; err != nil {
		return nil, fmt.Errorf("failed to load pharmacy: %w", err)
	}

	emails := services.NewEmailService()
	switch kind {
	case "placed":
		err = emails.SendOrderPlacedEmail(&order, &user, &pharmacy)
	case "delivered":
		err = emails.SendOrderDeliveredEmail(&order, &user, &pharmacy)
	}
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":   "success",
		"order_id": orderID,
		"kind":     kind,
		"to":       user.Email,
	}, nil
}
