package restapi

import (
	"net/http"

	"spotmerge.hitchmap.org/internal/models"
)

func (api *RestAPI) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := api.Workflow.Stats(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.Metrics.SetProposalStats(stats)

	api.sendResponse(w, r, models.NewEntryResponse(stats, api.Clock))
}

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
