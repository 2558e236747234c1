package restapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotmerge.hitchmap.org/internal/models"
)

func TestProposeHandler(t *testing.T) {
	api := newTestAPI(t)
	api.seed("a", 45.00000, 4.00000, "A6 Lyon Sud")
	api.seed("b", 45.00004, 4.00000, "A6 Lyon Sud")

	rec := api.post(t, "/api/merge/propose?key=test",
		`{"spotId1":"a","spotId2":"b","proposer":"alice","reason":"same spot"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	entry := entryOf(t, rec)
	assert.Equal(t, "pending", entry["status"])
	assert.Equal(t, "a|b", entry["pairKey"])
	assert.Equal(t, "alice", entry["proposer"])
	assert.NotEmpty(t, entry["id"])
}

func TestProposeHandlerValidation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.post(t, "/api/merge/propose?key=test", `{"spotId1":"a"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	fieldErrors, ok := env.Data["fieldErrors"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fieldErrors, "spotId2")
	assert.Contains(t, fieldErrors, "proposer")
}

func TestProposeHandlerBadJSON(t *testing.T) {
	api := newTestAPI(t)

	rec := api.post(t, "/api/merge/propose?key=test", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProposeHandlerUnknownSpot(t *testing.T) {
	api := newTestAPI(t)
	api.seed("a", 45.0, 4.0, "A6 Lyon")

	rec := api.post(t, "/api/merge/propose?key=test",
		`{"spotId1":"a","spotId2":"missing","proposer":"alice"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProposeHandlerSelfMergeConflict(t *testing.T) {
	api := newTestAPI(t)
	api.seed("a", 45.0, 4.0, "A6 Lyon")

	rec := api.post(t, "/api/merge/propose?key=test",
		`{"spotId1":"a","spotId2":"a","proposer":"alice"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProposeHandlerRequiresAPIKey(t *testing.T) {
	api := newTestAPI(t)

	rec := api.post(t, "/api/merge/propose",
		`{"spotId1":"a","spotId2":"b","proposer":"alice"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.post(t, "/api/merge/propose?key=wrong",
		`{"spotId1":"a","spotId2":"b","proposer":"alice"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVoteHandler(t *testing.T) {
	api := newTestAPI(t)
	api.seed("a", 45.00000, 4.00000, "A6 Lyon Sud")
	api.seed("b", 45.00004, 4.00000, "A6 Lyon Sud")

	p, err := api.Workflow.Propose(context.Background(), "a", "b", "alice", "")
	require.NoError(t, err)

	rec := api.post(t, "/api/merge/proposals/"+p.ID+"/vote?key=test",
		`{"voter":"carol","choice":"approve"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	entry := entryOf(t, rec)
	votes, ok := entry["votes"].(map[string]interface{})
	require.True(t, ok)
	approve, ok := votes["approve"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, approve, "carol")
}

func TestVoteHandlerInvalidChoice(t *testing.T) {
	api := newTestAPI(t)
	api.seed("a", 45.00000, 4.00000, "A6 Lyon Sud")
	api.seed("b", 45.00004, 4.00000, "A6 Lyon Sud")

	p, err := api.Workflow.Propose(context.Background(), "a", "b", "alice", "")
	require.NoError(t, err)

	rec := api.post(t, "/api/merge/proposals/"+p.ID+"/vote?key=test",
		`{"voter":"carol","choice":"abstain"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVoteHandlerUnknownProposal(t *testing.T) {
	api := newTestAPI(t)

	rec := api.post(t, "/api/merge/proposals/missing/vote?key=test",
		`{"voter":"carol","choice":"approve"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveHandler(t *testing.T) {
	api := newTestAPI(t)
	api.seed("a", 45.00000, 4.00000, "A6 Lyon Sud")
	api.seed("b", 45.00004, 4.00000, "A6 Lyon Sud")

	p, err := api.Workflow.Propose(context.Background(), "a", "b", "alice", "")
	require.NoError(t, err)

	rec := api.post(t, "/api/merge/proposals/"+p.ID+"/approve?key=test", `{"actor":"mod"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", entryOf(t, rec)["status"])
}

func TestApproveHandlerForbiddenForNonModerator(t *testing.T) {
	api := newTestAPI(t)
	api.seed("a", 45.00000, 4.00000, "A6 Lyon Sud")
	api.seed("b", 45.00004, 4.00000, "A6 Lyon Sud")

	p, err := api.Workflow.Propose(context.Background(), "a", "b", "alice", "")
	require.NoError(t, err)

	rec := api.post(t, "/api/merge/proposals/"+p.ID+"/approve?key=test", `{"actor":"alice"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRejectHandler(t *testing.T) {
	api := newTestAPI(t)
	api.seed("a", 45.00000, 4.00000, "A6 Lyon Sud")
	api.seed("b", 45.00004, 4.00000, "A6 Lyon Sud")

	p, err := api.Workflow.Propose(context.Background(), "a", "b", "alice", "")
	require.NoError(t, err)

	rec := api.post(t, "/api/merge/proposals/"+p.ID+"/reject?key=test",
		`{"actor":"mod","reason":"different ramps"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	entry := entryOf(t, rec)
	assert.Equal(t, "rejected", entry["status"])
	assert.Equal(t, "different ramps", entry["decisionReason"])
}

func TestCancelHandler(t *testing.T) {
	api := newTestAPI(t)
	api.seed("a", 45.00000, 4.00000, "A6 Lyon Sud")
	api.seed("b", 45.00004, 4.00000, "A6 Lyon Sud")

	p, err := api.Workflow.Propose(context.Background(), "a", "b", "alice", "")
	require.NoError(t, err)

	rec := api.post(t, "/api/merge/proposals/"+p.ID+"/cancel?key=test", `{"actor":"alice"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", entryOf(t, rec)["status"])

	// A decided proposal cannot be re-decided.
	rec = api.post(t, "/api/merge/proposals/"+p.ID+"/approve?key=test", `{"actor":"mod"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProposalsHandler(t *testing.T) {
	api := newTestAPI(t)
	api.seed("a", 45.00000, 4.00000, "A6 Lyon Sud")
	api.seed("b", 45.00004, 4.00000, "A6 Lyon Sud")
	api.seed("c", 45.10000, 4.10000, "A7 Valence")
	api.seed("d", 45.10004, 4.10000, "A7 Valence")

	ctx := context.Background()
	p1, err := api.Workflow.Propose(ctx, "a", "b", "alice", "")
	require.NoError(t, err)
	_, err = api.Workflow.Propose(ctx, "c", "d", "alice", "")
	require.NoError(t, err)
	_, err = api.Workflow.Approve(ctx, p1.ID, "mod")
	require.NoError(t, err)

	rec := api.get(t, "/api/merge/proposals?key=test")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, listOf(t, rec), 2)

	rec = api.get(t, "/api/merge/proposals?key=test&status="+string(models.StatusApproved))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, listOf(t, rec), 1)

	rec = api.get(t, "/api/merge/proposals?key=test&status=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
