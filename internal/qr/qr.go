// Package qr renders UPI payment QR codes.
package qr

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

// Renderer produces PNG QR images for a fixed payee.
type Renderer struct {
	UPIAddress string
	PayeeName  string
}

// PaymentURI builds the upi://pay deep link for a plan purchase.
func (r Renderer) PaymentURI(planName string, amount int) string {
	pa := r.UPIAddress
	if pa == "" {
		pa = "example@upi"
	}
	pn := r.PayeeName
	if pn == "" {
		pn = "PremiumBot"
	}
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%d&tn=%s",
		url.QueryEscape(pa), url.QueryEscape(pn), amount, url.QueryEscape(planName))
}

// Render returns a PNG-encoded QR code for the payment URI.
func (r Renderer) Render(planName string, amount int) ([]byte, error) {
	png, err := qrcode.Encode(r.PaymentURI(planName, amount), qrcode.Medium, 512)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	return png, nil
}
