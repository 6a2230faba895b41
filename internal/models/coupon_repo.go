package models

import (
	"context"
	"fmt"
)

type CouponRepo interface {
	ValidateCoupon(ctx context.Context, code string, bookingAmount int64) (*CouponValidationRow, error)
}

// ValidateCoupon calls the validate_coupon RPC. The discount decision lives
// entirely in the remote procedure; this side only transports the request and
// parses the response, failing closed on anything malformed.
func (su *SupabaseRepo) ValidateCoupon(ctx context.Context, code string, bookingAmount int64) (*CouponValidationRow, error) {
	payload := map[string]interface{}{
		"coupon_code_param":    code,
		"booking_amount_param": bookingAmount,
	}

	raw := su.supabaseClient.Rpc("validate_coupon", "", payload)
	if raw == "" {
		return nil, fmt.Errorf("validate_coupon rpc returned no data")
	}

	row, err := ParseCouponValidation([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("validate_coupon rpc: %v", err)
	}

	return row, nil
}
