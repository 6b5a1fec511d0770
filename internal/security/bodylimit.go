package security

import (
	"mime"
	"net/http"

	"github.com/noah-isme/backend-orcamento/internal/common"
)

// BodyLimit caps request bodies. JSON requests are held to Max; multipart
// uploads to MultipartMax, falling back to Max. Bodies are never buffered:
// a declared oversize is refused up front and anything else is wrapped in
// http.MaxBytesReader, which common.DecodeJSON reports as 413.
type BodyLimit struct {
	Max          int64
	MultipartMax int64
}

func (b BodyLimit) limitFor(r *http.Request) int64 {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" && b.MultipartMax > 0 {
		return b.MultipartMax
	}
	return b.Max
}

// Middleware enforces the limits.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := b.limitFor(r)
		if limit <= 0 || r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > limit {
			common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request entity too large", nil)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}
