package restapi

import (
	"encoding/json"
	"net/http"

	"spotmerge.hitchmap.org/internal/models"
)

type executeRequest struct {
	SpotID1    string `json:"spotId1"`
	SpotID2    string `json:"spotId2"`
	ProposalID string `json:"proposalId"`
}

func (api *RestAPI) executeHandler(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.errorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	fieldErrors := make(map[string][]string)
	if req.SpotID1 == "" {
		fieldErrors["spotId1"] = []string{"spotId1 is required"}
	}
	if req.SpotID2 == "" {
		fieldErrors["spotId2"] = []string{"spotId2 is required"}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	consolidated, err := api.Executor.Execute(r.Context(), req.SpotID1, req.SpotID2, req.ProposalID)
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}
	api.Metrics.MergesExecuted.Inc()

	api.sendResponse(w, r, models.NewEntryResponse(consolidated, api.Clock))
}
