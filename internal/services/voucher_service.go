package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/joshua-takyi/tripbay/internal/models"
)

// VoucherService renders a printable PDF voucher for a confirmed booking.
type VoucherService struct{}

func NewVoucherService() *VoucherService {
	return &VoucherService{}
}

// GenerateVoucher returns the PDF bytes and a suggested filename.
func (vs *VoucherService) GenerateVoucher(booking *models.Booking) ([]byte, string, error) {
	if booking == nil {
		return nil, "", fmt.Errorf("nil booking")
	}
	if booking.PaymentStatus != "paid" {
		return nil, "", fmt.Errorf("voucher available only for paid bookings")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Voucher", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING VOUCHER")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Guest          : %s", safe(booking.GuestName)),
		fmt.Sprintf("Hotel          : %s", safe(booking.HotelName)),
		fmt.Sprintf("Check-in       : %s", booking.CheckInDate.Format("2006-01-02")),
		fmt.Sprintf("Check-out      : %s", booking.CheckOutDate.Format("2006-01-02")),
		fmt.Sprintf("Guests         : %d", booking.Guests),
		fmt.Sprintf("Phone          : %s", safe(booking.GuestPhone)),
		fmt.Sprintf("Amount Paid    : %s", models.Money(booking.TotalAmount).Display()),
		fmt.Sprintf("Payment Ref    : %s", safe(booking.RazorpayPaymentID)),
		fmt.Sprintf("Booking Ref    : %s", booking.ID.String()),
		fmt.Sprintf("Status         : %s / %s", booking.Status, booking.PaymentStatus),
	}
	if booking.DiscountAmount > 0 {
		lines = append(lines, fmt.Sprintf("Discount       : %s", models.Money(booking.DiscountAmount).Display()))
	}

	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Present this voucher with a valid photo ID at check-in.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render voucher: %v", err)
	}

	name := fmt.Sprintf("voucher-%s.pdf", strings.Split(booking.ID.String(), "-")[0])
	return buf.Bytes(), name, nil
}

func safe(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
