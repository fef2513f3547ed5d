package sale

import "errors"

var (
	ErrSaleNotFound         = errors.New("sale not found")
	ErrItemNotFound         = errors.New("sale item not found")
	ErrNotDraft             = errors.New("sale is no longer a draft")
	ErrNotPaid              = errors.New("only paid sales can be voided")
	ErrEmptySale            = errors.New("sale has no items")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidItem          = errors.New("item must reference exactly one supply or service")
	ErrInvalidDiscount      = errors.New("discount cannot be negative")

	ErrSessionNotFound    = errors.New("cash session not found")
	ErrNoOpenSession      = errors.New("no cash session is open")
	ErrSessionAlreadyOpen = errors.New("a cash session is already open")
	ErrSessionClosed      = errors.New("cash session is closed")
)
