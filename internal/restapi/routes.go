package restapi

import (
	"net/http"
)

// rateLimitAndValidateAPIKey combines API key validation, rate limiting, and compression
func rateLimitAndValidateAPIKey(api *RestAPI, finalHandler http.HandlerFunc) http.Handler {
	compressedHandler := CompressionMiddleware(finalHandler)

	var rateLimitedHandler http.Handler
	if api.rateLimiter != nil {
		rateLimitedHandler = api.rateLimiter(compressedHandler)
	} else {
		// Fallback for tests that don't use NewRestAPI constructor
		rateLimitedHandler = compressedHandler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		rateLimitedHandler.ServeHTTP(w, r)
	})
}

// SetRoutes registers all API endpoints
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	// Health and metrics endpoints - no authentication required
	mux.HandleFunc("GET /healthz", api.healthHandler)
	mux.Handle("GET /metrics", api.Metrics.Handler())

	mux.Handle("GET /api/merge/detect/{id}", rateLimitAndValidateAPIKey(api, api.detectDuplicatesHandler))
	mux.Handle("GET /api/merge/scan", rateLimitAndValidateAPIKey(api, api.scanHandler))
	mux.Handle("GET /api/merge/resolve/{id}", rateLimitAndValidateAPIKey(api, api.resolveHandler))
	mux.Handle("GET /api/merge/stats", rateLimitAndValidateAPIKey(api, api.statsHandler))
	mux.Handle("GET /api/merge/proposals", rateLimitAndValidateAPIKey(api, api.proposalsHandler))

	mux.Handle("POST /api/merge/propose", rateLimitAndValidateAPIKey(api, api.proposeHandler))
	mux.Handle("POST /api/merge/proposals/{id}/vote", rateLimitAndValidateAPIKey(api, api.voteHandler))
	mux.Handle("POST /api/merge/proposals/{id}/approve", rateLimitAndValidateAPIKey(api, api.approveHandler))
	mux.Handle("POST /api/merge/proposals/{id}/reject", rateLimitAndValidateAPIKey(api, api.rejectHandler))
	mux.Handle("POST /api/merge/proposals/{id}/cancel", rateLimitAndValidateAPIKey(api, api.cancelHandler))
	mux.Handle("POST /api/merge/execute", rateLimitAndValidateAPIKey(api, api.executeHandler))
}
