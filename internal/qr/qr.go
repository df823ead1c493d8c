// Package qr produces the attendance QR codes handed to gyms and parses
// the payloads scanned back by the mobile app.
package qr

import (
	"encoding/base64"
	"fmt"
	"regexp"

	qrcode "github.com/skip2/go-qrcode"
)

// AttendanceURI is the payload encoded into a gym's check-in QR code.
func AttendanceURI(gymID string) string {
	return "fitdesert://attendance/" + gymID
}

// GenerateBase64 renders the payload as a base64-encoded PNG, sized for
// printing at the front desk.
func GenerateBase64(payload string) (string, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, 512)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

var gymIDPattern = regexp.MustCompile(`gym_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// ExtractGymID pulls the gym ID out of a scanned payload. Scanners hand
// back whatever they read, so anything containing a well-formed gym ID
// is accepted.
func ExtractGymID(payload string) (string, error) {
	id := gymIDPattern.FindString(payload)
	if id == "" {
		return "", fmt.Errorf("no gym id in payload %q", payload)
	}
	return id, nil
}
