package httpadapter

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func RequestSizeLimit(maxSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			next.ServeHTTP(w, r)
		})
	}
}

// this is the factory
func RequireURLParams(params ...string) func(http.Handler) http.Handler {
	// this is the middleware function that gets returned
	return func(next http.Handler) http.Handler {

		// this is the actual handler that will be used for each request
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			for _, param := range params {

				if strings.TrimSpace(chi.URLParam(r, param)) == "" {

					msg := fmt.Sprintf("Bad request: URL parameter '%s' is required", param)
					http.Error(w, msg, http.StatusBadRequest)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows browsers on the listed origins to call the API. A single "*"
// allows any origin by echoing it back. Preflight requests are answered directly.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	allowAll := len(origins) == 1 && origins[0] == "*"

	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case origin != "" && (allowAll || slices.Contains(origins, origin)):
				// credentialed requests are refused by browsers when the origin is "*"
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Expose-Headers", TotalCountHeader)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Delay holds every request for base plus a random extra of up to jitter,
// simulating a slow backend. A cancelled request stops waiting.
func Delay(base, jitter time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wait := base
			if jitter > 0 {
				wait += rand.N(jitter)
			}

			if wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-timer.C:
				case <-r.Context().Done():
					timer.Stop()
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
