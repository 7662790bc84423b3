package store

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentComplete PaymentStatus = "Complete"
	PaymentFailed   PaymentStatus = "Failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentComplete, PaymentFailed:
		return true
	}
	return false
}

var validNext = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentPending:  {PaymentComplete: true, PaymentFailed: true},
	PaymentComplete: {},
	PaymentFailed:   {},
}

func CanTransition(from, to PaymentStatus) bool {
	return validNext[from][to]
}
