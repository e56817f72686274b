package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"pharmaplus_echo/internal/models"
)

// PaymentService wraps the Midtrans gateway for online order payments.
type PaymentService struct {
	SnapClient snap.Client
	CoreClient coreapi.Client
	orders     *OrderService
}

func NewPaymentService(orders *OrderService) *PaymentService {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	clientKey := os.Getenv("MIDTRANS_CLIENT_KEY")

	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_IS_PRODUCTION") == "true" {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(serverKey, env)

	var c coreapi.Client
	c.New(serverKey, env)

	midtrans.ServerKey = serverKey
	midtrans.ClientKey = clientKey
	midtrans.Environment = env

	return &PaymentService{SnapClient: s, CoreClient: c, orders: orders}
}

// paymentOrderID builds the gateway-facing order reference. The numeric order
// id is recoverable from it in ParseOrderID.
func paymentOrderID(orderID uint) string {
	return fmt.Sprintf("PHARMA-%d", orderID)
}

// ParseOrderID recovers the local order id from a gateway order reference.
func ParseOrderID(ref string) (uint, error) {
	raw, ok := strings.CutPrefix(ref, "PHARMA-")
	if !ok {
		return 0, fmt.Errorf("%w: unrecognized payment reference %q", ErrValidation, ref)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unrecognized payment reference %q", ErrValidation, ref)
	}
	return uint(id), nil
}

// CreateTransaction opens a Snap payment session for a pending order and
// returns the redirect URL the customer completes payment on.
func (s *PaymentService) CreateTransaction(order *models.Order, user *models.User) (*snap.Response, error) {
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order %d is not awaiting payment", ErrInvalidState, order.ID)
	}

	amount := int64(ParseOrderTotal(order.Total))
	if amount <= 0 {
		return nil, fmt.Errorf("%w: order total %q is not payable", ErrValidation, order.Total)
	}

	param := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  paymentOrderID(order.ID),
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.Firstname,
			LName: user.Lastname,
			Email: user.Email,
			Phone: user.Phone,
		},
	}

	resp, err := s.SnapClient.CreateTransaction(param)
	if err != nil {
		return nil, fmt.Errorf("midtrans create transaction error: %v", err)
	}
	return resp, nil
}

// HandleNotification processes a gateway callback. The transaction status is
// re-checked against the gateway rather than trusted from the request body;
// a settled payment moves the order from Pending to Processing.
func (s *PaymentService) HandleNotification(ctx context.Context, gatewayOrderID string) error {
	orderID, err := ParseOrderID(gatewayOrderID)
	if err != nil {
		return err
	}

	status, mErr := s.CoreClient.CheckTransaction(gatewayOrderID)
	if mErr != nil {
		return fmt.Errorf("midtrans check transaction error: %v", mErr)
	}

	switch status.TransactionStatus {
	case "settlement", "capture":
		if status.FraudStatus != "" && status.FraudStatus != "accept" {
			return nil
		}
		_, err = s.orders.UpdateOrderStatus(ctx, orderID, models.OrderStatusProcessing)
	case "deny", "cancel", "expire":
		_, err = s.orders.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled)
	default:
		// pending and unknown statuses leave the order untouched
		return nil
	}
	if errors.Is(err, ErrInvalidState) {
		// duplicate callback for an order that already moved on
		return nil
	}
	return err
}
