package security

import (
	"net/http"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/common"
)

// BodyLimit caps request payloads. Declared lengths over the cap are refused
// up front; streamed bodies are cut off by http.MaxBytesReader and surface as
// 413 when the handler decodes them with common.DecodeJSON.
type BodyLimit struct {
	Max int64
}

// Middleware implements the http.Handler middleware interface.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	if b.Max <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > b.Max {
			common.WriteError(w, common.PayloadTooLarge(b.Max))
			return
		}
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, b.Max)
		}
		next.ServeHTTP(w, r)
	})
}
