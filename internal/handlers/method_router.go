package handlers

import (
	"net/http"
)

// MethodRouter maps HTTP methods to handler funcs
type MethodRouter map[string]http.HandlerFunc

// RouteByMethod dispatches on the request method with uniform rejection of
// anything unmapped.
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	handler, ok := routes[r.Method]
	if !ok {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	handler(w, r)
}
