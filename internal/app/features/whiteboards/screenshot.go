// internal/app/features/whiteboards/screenshot.go
package whiteboards

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const pngDataURLPrefix = "data:image/png;base64,"

var (
	errNotPNG       = apperr.EK(apperr.KindInvalidInput, "whiteboard.error.screenshot_format", "screenshot must be a PNG data URL")
	errShotTooLarge = apperr.EK(apperr.KindInvalidInput, "whiteboard.error.screenshot_size", "screenshot exceeds the size limit")
)

// decodePNGDataURL returns the PNG bytes of a canvas.toDataURL() value.
// The decoded image must not exceed max bytes and must parse as a PNG.
func decodePNGDataURL(s string, max int64) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, pngDataURLPrefix) {
		return nil, errNotPNG
	}
	enc := s[len(pngDataURLPrefix):]
	if int64(base64.StdEncoding.DecodedLen(len(enc))) > max+2 {
		return nil, errShotTooLarge
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, errNotPNG
	}
	if int64(len(raw)) > max {
		return nil, errShotTooLarge
	}
	if _, err := png.DecodeConfig(bytes.NewReader(raw)); err != nil {
		return nil, errNotPNG
	}
	return raw, nil
}

// screenshotBodyLimit bounds the urlencoded request body for a capture of
// at most max bytes. base64 inflates by 4/3 and form encoding escapes '+',
// '/' and '=' as three bytes each; the 3/2 factor covers that with slack,
// and 64 KiB leaves room for the other form fields. decodePNGDataURL
// enforces the exact limit.
func screenshotBodyLimit(max int64) int64 {
	return max*4/3*3/2 + 64<<10
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /whiteboards/{id}/screenshot                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleScreenshot stores a capture of the canvas. The browser posts the
// canvas as a PNG data URL in the "image" field.
func (h *Handler) HandleScreenshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := "/whiteboards/" + id

	r.Body = http.MaxBytesReader(w, r.Body, screenshotBodyLimit(h.MaxScreenshotBytes))
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.ErrLog.Banner(w, r, "screenshot too large", errShotTooLarge, back)
			return
		}
		h.ErrLog.Banner(w, r, "parse form failed", apperr.Wrap(apperr.KindInvalidInput, err, "bad form"), back)
		return
	}

	img, err := decodePNGDataURL(r.FormValue("image"), h.MaxScreenshotBytes)
	if err != nil {
		h.ErrLog.Banner(w, r, "screenshot rejected", err, back)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Upload())
	defer cancel()

	if err := h.Boards.CaptureWhiteboardScreenshot(ctx, auth.ViewerFrom(r), id, img); err != nil {
		h.ErrLog.Banner(w, r, "capture screenshot failed", err, back)
		return
	}
	h.Log.Info("whiteboard screenshot saved", zap.String("session_id", id), zap.Int("bytes", len(img)))

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Trigger", "screenshot-saved")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /whiteboards/{id}/screenshot                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeScreenshot returns the latest capture as image/png.
func (h *Handler) ServeScreenshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	img, err := h.Boards.GetScreenshot(ctx, auth.ViewerFrom(r), id)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "load screenshot failed", err, "/whiteboards/"+id)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Cache-Control", "private, no-cache")
	_, _ = w.Write(img)
}
