package restapi

import (
	"encoding/json"
	"net/http"

	"spotmerge.hitchmap.org/internal/identity"
	"spotmerge.hitchmap.org/internal/models"
)

type proposeRequest struct {
	SpotID1  string `json:"spotId1"`
	SpotID2  string `json:"spotId2"`
	Proposer string `json:"proposer"`
	Reason   string `json:"reason"`
}

func (api *RestAPI) proposeHandler(w http.ResponseWriter, r *http.Request) {
	var req proposeRequest
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
	if req.Proposer == "" {
		fieldErrors["proposer"] = []string{"proposer is required"}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	proposal, err := api.Workflow.Propose(r.Context(), req.SpotID1, req.SpotID2, identity.Identity(req.Proposer), req.Reason)
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}
	api.Metrics.ProposalActions.WithLabelValues("propose").Inc()

	api.sendResponse(w, r, models.NewEntryResponse(proposal, api.Clock))
}

type voteRequest struct {
	Voter  string `json:"voter"`
	Choice string `json:"choice"`
}

func (api *RestAPI) voteHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.errorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	proposal, err := api.Workflow.Vote(r.Context(), proposalID, identity.Identity(req.Voter), models.VoteChoice(req.Choice))
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}
	api.Metrics.ProposalActions.WithLabelValues("vote").Inc()

	api.sendResponse(w, r, models.NewEntryResponse(proposal, api.Clock))
}

type decisionRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

func (api *RestAPI) approveHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.errorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	proposal, err := api.Workflow.Approve(r.Context(), proposalID, identity.Identity(req.Actor))
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}
	api.Metrics.ProposalActions.WithLabelValues("approve").Inc()

	api.sendResponse(w, r, models.NewEntryResponse(proposal, api.Clock))
}

func (api *RestAPI) rejectHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.errorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	proposal, err := api.Workflow.Reject(r.Context(), proposalID, identity.Identity(req.Actor), req.Reason)
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}
	api.Metrics.ProposalActions.WithLabelValues("reject").Inc()

	api.sendResponse(w, r, models.NewEntryResponse(proposal, api.Clock))
}

func (api *RestAPI) cancelHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.errorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	proposal, err := api.Workflow.Cancel(r.Context(), proposalID, identity.Identity(req.Actor))
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}
	api.Metrics.ProposalActions.WithLabelValues("cancel").Inc()

	api.sendResponse(w, r, models.NewEntryResponse(proposal, api.Clock))
}

func (api *RestAPI) proposalsHandler(w http.ResponseWriter, r *http.Request) {
	status := models.ProposalStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.StatusPending, models.StatusApproved, models.StatusExecuted, models.StatusRejected, models.StatusCancelled:
	default:
		api.validationErrorResponse(w, r, map[string][]string{"status": {"unknown status"}})
		return
	}

	proposals, err := api.Workflow.List(r.Context(), status)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewListResponse(proposals, api.Clock))
}
