package restapi

import (
	"net/http"

	"spotmerge.hitchmap.org/internal/models"
	"spotmerge.hitchmap.org/internal/utils"
)

func (api *RestAPI) detectDuplicatesHandler(w http.ResponseWriter, r *http.Request) {
	spotID := r.PathValue("id")
	if spotID == "" {
		api.validationErrorResponse(w, r, map[string][]string{"id": {"id is required"}})
		return
	}

	queryParams := r.URL.Query()
	fieldErrors := make(map[string][]string)

	radius := 0.0
	if queryParams.Get("radius") != "" {
		parsed, err := utils.ParseFloatParam(queryParams, "radius", fieldErrors)
		if err == nil {
			if parsed <= 0 {
				fieldErrors["radius"] = []string{"must be greater than zero"}
			} else {
				radius = parsed
			}
		}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	ctx := r.Context()

	canonicalID, err := api.Workflow.Resolver().Resolve(ctx, spotID)
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}

	spot, ok, err := api.SpotRepo.GetByID(ctx, canonicalID)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	if !ok {
		api.domainErrorResponse(w, r, models.ErrSpotNotFound)
		return
	}

	pool, err := api.SpotRepo.List(ctx)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	candidates, err := api.Detector.Detect(spot, pool, radius)
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewListResponse(candidates, api.Clock))
}
