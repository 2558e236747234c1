package app

import "net/http"

// IsInvalidAPIKey reports whether key is missing or not among the configured
// API keys. A blank key is always invalid.
func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}
	for _, configured := range app.Config.ApiKeys {
		if key == configured {
			return false
		}
	}
	return true
}

// RequestHasInvalidAPIKey validates the request's key query parameter.
func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	return app.IsInvalidAPIKey(r.URL.Query().Get("key"))
}
