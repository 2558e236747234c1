package restapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"spotmerge.hitchmap.org/internal/app"
	"spotmerge.hitchmap.org/internal/appconf"
	"spotmerge.hitchmap.org/internal/clock"
	"spotmerge.hitchmap.org/internal/detection"
	"spotmerge.hitchmap.org/internal/executor"
	"spotmerge.hitchmap.org/internal/identity"
	"spotmerge.hitchmap.org/internal/metrics"
	"spotmerge.hitchmap.org/internal/models"
	"spotmerge.hitchmap.org/internal/notify"
	"spotmerge.hitchmap.org/internal/spots"
	"spotmerge.hitchmap.org/internal/store"
	"spotmerge.hitchmap.org/internal/workflow"
)

var testClock = clock.FixedClock{FixedTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

type testAPI struct {
	*RestAPI
	repo  *spots.MemoryRepository
	store *store.MemoryStore
	mux   *http.ServeMux
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := appconf.Config{
		Env:           appconf.Test,
		ApiKeys:       []string{"test"},
		ModeratorKeys: []string{"mod"},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := store.NewMemoryStore()
	repo := spots.NewMemoryRepository()
	favorites := spots.NewMemoryFavorites()
	auth := identity.NewStaticAuthorizer(cfg.ModeratorKeys)
	detector := detection.NewDetector()

	wf := workflow.New(s, repo, auth, notify.NoopNotifier{}, testClock, logger)
	exec := executor.New(s, store.NewMemoryCommitter(s, repo), repo, favorites, wf.Resolver(), notify.NoopNotifier{}, testClock, logger)

	application := &app.Application{
		Config:     cfg,
		Logger:     logger,
		Clock:      testClock,
		SpotRepo:   repo,
		Detector:   detector,
		Scanner:    detection.NewScanner(detector),
		Workflow:   wf,
		Executor:   exec,
		Authorizer: auth,
		Metrics:    metrics.New(),
	}

	api := NewRestAPI(application)
	mux := http.NewServeMux()
	api.SetRoutes(mux)

	return &testAPI{RestAPI: api, repo: repo, store: s, mux: mux}
}

func (a *testAPI) seed(id string, lat, lon float64, origin string) {
	a.repo.Put(models.Spot{
		ID:          id,
		Coordinate:  &models.Coordinate{Lat: lat, Lon: lon},
		OriginLabel: origin,
	})
}

func (a *testAPI) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) post(t *testing.T, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

// envelope is the decoded standard response with Data left generic.
type envelope struct {
	Code        int                    `json:"code"`
	CurrentTime int64                  `json:"currentTime"`
	Data        map[string]interface{} `json:"data"`
	Text        string                 `json:"text"`
	Version     int                    `json:"version"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func entryOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	env := decodeEnvelope(t, rec)
	entry, ok := env.Data["entry"].(map[string]interface{})
	require.True(t, ok, "response should carry an entry")
	return entry
}

func listOf(t *testing.T, rec *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	env := decodeEnvelope(t, rec)
	list, ok := env.Data["list"].([]interface{})
	require.True(t, ok, "response should carry a list")
	return list
}
