package middleware

import "net/http"

// BodyLimit caps request bodies of mutating requests. Paths listed in
// overrides get their own cap, used for the legacy feedback import which
// carries whole exports.
func BodyLimit(maxBytes int64, overrides map[string]int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				limit := maxBytes
				if override, ok := overrides[normalizedAPIPath(r.URL.Path)]; ok {
					limit = override
				}
				if limit > 0 {
					r.Body = http.MaxBytesReader(w, r.Body, limit)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
