package models

import (
	"encoding/json"
	"fmt"
)

// CouponValidationRow is the single row returned by the validate_coupon RPC.
// The shape is validated before use; anything malformed is treated as a
// transport error rather than trusted.
type CouponValidationRow struct {
	Valid          bool   `json:"valid"`
	DiscountAmount int64  `json:"discount_amount"`
	CouponID       string `json:"coupon_id"`
	Message        string `json:"message"`
}

// ParseCouponValidation decodes the raw RPC response. The backend returns an
// array even for single results.
func ParseCouponValidation(raw []byte) (*CouponValidationRow, error) {
	var rows []CouponValidationRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coupon validation rows: %v", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("coupon validation returned no rows")
	}
	row := rows[0]
	if row.Valid && row.DiscountAmount < 0 {
		return nil, fmt.Errorf("coupon validation returned negative discount")
	}
	return &row, nil
}
