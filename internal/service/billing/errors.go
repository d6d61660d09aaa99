package billing

import "errors"

var (
	ErrConsultationNotFound = errors.New("consultation not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrAccessDenied         = errors.New("not allowed to act on this payment")
	ErrNoFee                = errors.New("consultation has no fee to pay")
	ErrAlreadyPaid          = errors.New("consultation is already paid")
	ErrInvalidMethod        = errors.New("method must be cash or transfer")
	ErrNotCash              = errors.New("only cash payments can be confirmed manually")
	ErrNotSettled           = errors.New("gateway has not settled this payment")
)
