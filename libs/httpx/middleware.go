package httpx

import "net/http"

type Middleware func(http.Handler) http.Handler

// Chain(h, a, b) returns a(b(h)).
func Chain(h http.Handler, m ...Middleware) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}
