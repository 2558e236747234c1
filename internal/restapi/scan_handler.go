package restapi

import (
	"net/http"
	"time"

	"spotmerge.hitchmap.org/internal/models"
	"spotmerge.hitchmap.org/internal/utils"
)

func (api *RestAPI) scanHandler(w http.ResponseWriter, r *http.Request) {
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

	minConfidence := 0
	if queryParams.Get("minConfidence") != "" {
		parsed, err := utils.ParseIntParam(queryParams, "minConfidence", fieldErrors)
		if err == nil {
			if parsed <= 0 || parsed > 100 {
				fieldErrors["minConfidence"] = []string{"must be in (0,100]"}
			} else {
				minConfidence = parsed
			}
		}
	}

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	ctx := r.Context()

	allSpots, err := api.SpotRepo.List(ctx)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	start := time.Now()
	pairs, err := api.Scanner.ScanAll(allSpots, radius, minConfidence)
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}
	api.Metrics.ScansTotal.Inc()
	api.Metrics.ScanDuration.Observe(time.Since(start).Seconds())

	api.sendResponse(w, r, models.NewListResponse(pairs, api.Clock))
}
