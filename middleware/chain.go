package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Install adds mws to r for matched routes and also wraps the router's
// not found and method not allowed handlers, which mux serves without
// running route middleware.
func Install(r *mux.Router, mws ...mux.MiddlewareFunc) {
	r.Use(mws...)

	notFound := r.NotFoundHandler
	if notFound == nil {
		notFound = http.NotFoundHandler()
	}
	r.NotFoundHandler = chain(notFound, mws)

	notAllowed := r.MethodNotAllowedHandler
	if notAllowed == nil {
		notAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusMethodNotAllowed)
		})
	}
	r.MethodNotAllowedHandler = chain(notAllowed, mws)
}

func chain(h http.Handler, mws []mux.MiddlewareFunc) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
