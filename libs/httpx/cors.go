package httpx

import (
	"net/http"
	"strings"
)

// CORSPolicy lists the origins, methods and headers to allow. Credentialed
// CORS is not supported: tokens travel in the Authorization header, not in
// cookies, so responses never need Access-Control-Allow-Credentials.
type CORSPolicy struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// WithCORS answers preflights and stamps allow headers on responses to
// matching origins. With no configured origins everything passes through
// untouched.
func WithCORS(policy CORSPolicy) Middleware {
	origins := trimmed(policy.AllowedOrigins)
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	methods := strings.Join(trimmed(policy.AllowedMethods), ", ")
	headers := strings.Join(trimmed(policy.AllowedHeaders), ", ")

	anyOrigin := false
	for _, o := range origins {
		if o == "*" {
			anyOrigin = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed := allowedOriginFor(r.Header.Get("Origin"), origins, anyOrigin)
			if allowed == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowed)
			if methods != "" {
				h.Set("Access-Control-Allow-Methods", methods)
			}
			if headers != "" {
				h.Set("Access-Control-Allow-Headers", headers)
			}
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowedOriginFor(origin string, origins []string, anyOrigin bool) string {
	if origin == "" {
		// Same-origin or non-browser client.
		return ""
	}
	if anyOrigin {
		return "*"
	}
	for _, o := range origins {
		if strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}

func trimmed(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
