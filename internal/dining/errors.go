package dining

import "errors"

// Precondition violations are returned to the caller verbatim and are never
// retried. Storage failures are wrapped with %w and stay generic; handlers
// must not translate them into any of these kinds.
var (
	ErrTableAlreadyActive   = errors.New("table is already active")
	ErrTableAlreadyInactive = errors.New("table is already inactive")
	ErrUnpaidOrderExists    = errors.New("table has unpaid orders")
	ErrTableNotFound        = errors.New("table not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateTableNumber = errors.New("table number already exists")
	ErrTableHasActiveOrder  = errors.New("table has an active order")
	ErrInvalidTableNumber   = errors.New("table number must be a positive integer")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrNoCurrentOrder       = errors.New("no current order for table")
	ErrInvalidOrder         = errors.New("order must contain at least one item with positive quantity")
)

// IsPrecondition reports whether err is a domain precondition violation, as
// opposed to a not-found signal or an infrastructure failure.
func IsPrecondition(err error) bool {
	for _, kind := range []error{
		ErrTableAlreadyActive,
		ErrTableAlreadyInactive,
		ErrUnpaidOrderExists,
		ErrDuplicateTableNumber,
		ErrTableHasActiveOrder,
		ErrInvalidTableNumber,
		ErrInvalidStatus,
		ErrInvalidPaymentStatus,
		ErrNoCurrentOrder,
		ErrInvalidOrder,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is a missing-entity signal.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTableNotFound) || errors.Is(err, ErrOrderNotFound)
}
