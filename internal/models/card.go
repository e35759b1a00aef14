package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CardNumberPrefix is shared by every campus card; the last four digits are the owner's id.
const CardNumberPrefix = "123456"

// CardNumberFor derives the card number issued to the student with the given id.
func CardNumberFor(userID int) string {
	return fmt.Sprintf("%s%04d", CardNumberPrefix, userID)
}

// CardDetails is what a cashier sees after scanning or typing a card number.
type CardDetails struct {
	CardNumber string          `json:"cardNumber"`
	Holder     User            `json:"holder"`
	AccountID  string          `json:"accountId"`
	Balance    decimal.Decimal `json:"balance"`
	Active     bool            `json:"active"`
}

// QRPaymentToken is a one-time token a student presents at the till.
type QRPaymentToken struct {
	Token     string `json:"token"`
	AccountID string `json:"accountId"`
	QRImage   string `json:"qrImage"`
	ExpiresIn int    `json:"expiresInSeconds"`
}

// RedeemQRRequest is sent by the cashier after scanning a student's QR code.
type RedeemQRRequest struct {
	Token       string           `json:"token" validate:"required"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Location    string           `json:"location,omitempty"`
}
