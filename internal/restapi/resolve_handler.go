package restapi

import (
	"net/http"

	"spotmerge.hitchmap.org/internal/models"
)

func (api *RestAPI) resolveHandler(w http.ResponseWriter, r *http.Request) {
	spotID := r.PathValue("id")
	if spotID == "" {
		api.validationErrorResponse(w, r, map[string][]string{"id": {"id is required"}})
		return
	}

	canonicalID, err := api.Workflow.Resolver().Resolve(r.Context(), spotID)
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}

	entry := map[string]string{
		"spotId":      spotID,
		"canonicalId": canonicalID,
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.Clock))
}
