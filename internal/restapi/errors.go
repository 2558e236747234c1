package restapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"spotmerge.hitchmap.org/internal/models"
)

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.Code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.Logger.Error("writing response", "error", err, "path", r.URL.Path)
	}
}

func (api *RestAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	response := models.NewResponseWithClock(status, nil, message, api.Clock)
	api.sendResponse(w, r, response)
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.Logger.Error("internal error", "error", err, "path", r.URL.Path, "method", r.Method)
	api.errorResponse(w, r, http.StatusInternalServerError, "internal server error")
}

func (api *RestAPI) notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	api.errorResponse(w, r, http.StatusNotFound, message)
}

func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.errorResponse(w, r, http.StatusUnauthorized, "permission denied")
}

func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := models.NewResponseWithClock(http.StatusBadRequest, map[string]interface{}{
		"fieldErrors": fieldErrors,
	}, "validation error", api.Clock)
	api.sendResponse(w, r, response)
}

// domainErrorResponse maps the merge core's error taxonomy onto HTTP codes.
func (api *RestAPI) domainErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var invalidCoord *models.InvalidCoordinateError

	switch {
	case errors.Is(err, models.ErrSpotNotFound),
		errors.Is(err, models.ErrProposalNotFound):
		api.notFoundResponse(w, r, err.Error())
	case errors.Is(err, models.ErrSelfMergeRejected),
		errors.Is(err, models.ErrProposalNotPending),
		errors.Is(err, models.ErrProposalPairMismatch):
		api.errorResponse(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrPermissionDenied):
		api.errorResponse(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrMissingIdentity),
		errors.Is(err, models.ErrInvalidVoteChoice):
		api.errorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &invalidCoord):
		api.errorResponse(w, r, http.StatusBadRequest, err.Error())
	default:
		// Redirect invariant violations land here deliberately: they mean
		// stored state is corrupt, not that the request was wrong.
		api.serverErrorResponse(w, r, err)
	}
}
