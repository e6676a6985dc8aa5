package domain

import (
	"errors"
)

var (
	MessageSuccessCreatePayment = "payment created successfully"
	MessageSuccessNotification  = "notification processed"

	MessageFailedCreatePayment = "failed to create payment"
	MessageFailedNotification  = "failed to process notification"

	ErrOrderNotPayable  = errors.New("only confirmed orders can be paid")
	ErrOrderAlreadyPaid = errors.New("order already paid")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrPaymentFailed    = errors.New("payment gateway error")
)

type (
	PaymentResponse struct {
		PaymentID   string  `json:"payment_id"`
		OrderID     string  `json:"order_id"`
		Amount      float64 `json:"amount"`
		Token       string  `json:"token"`
		RedirectURL string  `json:"redirect_url"`
	}

	MidtransNotification struct {
		OrderID           string `json:"order_id"`
		TransactionStatus string `json:"transaction_status"`
		FraudStatus       string `json:"fraud_status"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
		SignatureKey      string `json:"signature_key"`
	}
)

// PaymentStatusFromGateway maps a Midtrans transaction status onto the
// order payment status.
func PaymentStatusFromGateway(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "" || fraudStatus == "accept" {
			return PaymentStatusPaid
		}
		return PaymentStatusPending
	case "settlement":
		return PaymentStatusPaid
	case "pending":
		return PaymentStatusPending
	case "deny", "cancel", "expire", "failure":
		return PaymentStatusFailed
	default:
		return PaymentStatusPending
	}
}
