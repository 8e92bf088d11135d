package roster

import "fmt"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch PaymentStatus(raw) {
	case PaymentPending:
		return PaymentPending, nil
	case PaymentPaid:
		return PaymentPaid, nil
	default:
		return "", fmt.Errorf("payment status must be pending or paid")
	}
}

// Entry is a player's seat in a mix. (MixID, PlayerID) is unique.
type Entry struct {
	MixID     string
	PlayerID  string
	Payment   PaymentStatus
	PaidValue float64
}

func (e Entry) IsPaid() bool {
	return e.Payment == PaymentPaid
}

// PaidAmount is what the entry contributed, falling back to the mix fee
// when a paid entry has no recorded amount.
func (e Entry) PaidAmount(fee float64) float64 {
	if !e.IsPaid() {
		return 0
	}
	if e.PaidValue > 0 {
		return e.PaidValue
	}
	return fee
}

// PendingAmount is the fee still owed by a non-paid entry.
func (e Entry) PendingAmount(fee float64) float64 {
	if e.IsPaid() {
		return 0
	}
	return fee
}
