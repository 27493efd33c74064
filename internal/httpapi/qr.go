package httpapi

import (
	"net/http"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// handleQRCode renders the attendee's pass: a QR code encoding their
// attendee URL.
func (s *Server) handleQRCode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.attendees.Exists(r.Context(), id); err != nil {
		s.writeServiceError(w, r, "qr code", err)
		return
	}

	png, err := qrcode.Encode(s.attendees.AttendeeURL(id), qrcode.Medium, qrSize)
	if err != nil {
		s.logger.WithError(err).Error("encode qr code")
		writeError(w, http.StatusInternalServerError, "internal_error", "could not render qr code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(png)
}
