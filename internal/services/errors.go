package services

import "errors"

// Flow guard errors. Handlers map these to user-facing messages; none of
// them abandons the draft, the wizard stays on its current step.
var (
	ErrNotAuthenticated   = errors.New("sign in to continue with the booking")
	ErrNotDraftOwner      = errors.New("booking draft belongs to another user")
	ErrTermsNotAgreed     = errors.New("agree to the terms and conditions to continue")
	ErrRosterIncomplete   = errors.New("add details for every guest to continue")
	ErrRosterInvalid      = errors.New("some guest details are invalid")
	ErrWrongStep          = errors.New("action not available at this step")
	ErrEmptyCouponCode    = errors.New("enter a coupon code")
	ErrCouponValidation   = errors.New("could not validate coupon, try again")
	ErrAttemptConsumed    = errors.New("this payment attempt was already processed")
	ErrPaymentFailed      = errors.New("payment verification failed")
)

// CouponRejectedError carries the server-supplied message for an invalid
// coupon, surfaced to the user verbatim.
type CouponRejectedError struct {
	Message string
}

func (e *CouponRejectedError) Error() string {
	if e.Message == "" {
		return "coupon is not valid"
	}
	return e.Message
}
