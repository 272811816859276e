package handler

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

// ReferralResponse describes the user's referral link.
type ReferralResponse struct {
	Link      string `json:"link"`
	QRCodeURL string `json:"qrCodeURL"`
}

// Referral handles GET /api/referral
func (h *DashboardHandler) Referral(w http.ResponseWriter, r *http.Request) {
	SendJSONSuccess(w, http.StatusOK, ReferralResponse{
		Link:      h.referralLink,
		QRCodeURL: "/api/referral/qr",
	})
}

// ReferralQR handles GET /api/referral/qr - renders the referral link as a PNG QR code
func (h *DashboardHandler) ReferralQR(w http.ResponseWriter, r *http.Request) {
	if h.referralLink == "" {
		SendJSONError(w, http.StatusNotFound, ErrReferralDisabled, "")
		return
	}

	query := r.URL.Query()

	// Get size parameter (default: 256, min: 128, max: 1024)
	size := 256
	if sizeStr := query.Get("size"); sizeStr != "" {
		parsedSize, err := strconv.Atoi(sizeStr)
		if err != nil {
			SendJSONError(w, http.StatusBadRequest, ErrInvalidSize, "Size must be a number")
			return
		}
		if parsedSize < 128 || parsedSize > 1024 {
			SendJSONError(w, http.StatusBadRequest, ErrInvalidSize, "Size must be between 128 and 1024")
			return
		}
		size = parsedSize
	}

	level, ok := parseLevel(query.Get("level"))
	if !ok {
		SendJSONError(w, http.StatusBadRequest, ErrInvalidLevel, "Level must be: low, medium, high, or highest")
		return
	}

	png, err := qrcode.Encode(h.referralLink, level, size)
	if err != nil {
		log.Error().Err(err).Str("link", h.referralLink).Msg("Failed to generate QR code")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))

	if _, err := w.Write(png); err != nil {
		log.Error().Err(err).Msg("Failed to write QR code response")
		return
	}

	log.Debug().
		Int("size", size).
		Str("level", levelStr(level)).
		Msg("Referral QR code generated")
}

// parseLevel maps the level query parameter; empty means medium.
func parseLevel(s string) (qrcode.RecoveryLevel, bool) {
	switch s {
	case "", "medium":
		return qrcode.Medium, true
	case "low":
		return qrcode.Low, true
	case "high":
		return qrcode.High, true
	case "highest":
		return qrcode.Highest, true
	}
	return qrcode.Medium, false
}

// levelStr converts qrcode.RecoveryLevel to string for logging
func levelStr(level qrcode.RecoveryLevel) string {
	switch level {
	case qrcode.Low:
		return "low"
	case qrcode.Medium:
		return "medium"
	case qrcode.High:
		return "high"
	case qrcode.Highest:
		return "highest"
	default:
		return "unknown"
	}
}
