package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainpass/internal/domain"
	"chainpass/internal/scoring"
	id "chainpass/pkg/domain"
	"chainpass/pkg/platform/sentinel"
)

var subject = id.MustAddress("0x" + strings.Repeat("cd", 20))

func newRouter(sources []scoring.ChainSource, cache scoring.Cache) http.Handler {
	svc := scoring.NewService(sources, cache, nil)
	r := chi.NewRouter()
	New(svc, nil).Register(r)
	return r
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetScore_OK(t *testing.T) {
	router := newRouter([]scoring.ChainSource{
		&scoring.StaticSource{SourceName: "ethereum", IsMainnet: true,
			Signals: domain.ActivitySignals{HasMainnetInteraction: true, TransactionCount: 150}},
		&scoring.StaticSource{SourceName: "base",
			Signals: domain.ActivitySignals{HasRollupInteraction: true}},
	}, nil)

	rec := get(t, router, fmt.Sprintf("/score/%s", subject))
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.ScoreResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 60, result.Score)
	assert.Equal(t, domain.TierSilver, result.Tier)
	assert.False(t, result.Partial)
}

func TestGetScore_PartialSurfacesFailedSources(t *testing.T) {
	router := newRouter([]scoring.ChainSource{
		&scoring.StaticSource{SourceName: "ethereum", IsMainnet: true,
			Signals: domain.ActivitySignals{HasMainnetInteraction: true}},
		&scoring.StaticSource{SourceName: "base", Err: sentinel.ErrUnavailable},
	}, nil)

	rec := get(t, router, fmt.Sprintf("/score/%s", subject))
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.ScoreResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Partial)
	assert.Equal(t, []string{"base"}, result.FailedSources)
}

func TestGetScore_AllSourcesDownGets503(t *testing.T) {
	router := newRouter([]scoring.ChainSource{
		&scoring.StaticSource{SourceName: "ethereum", IsMainnet: true, Err: sentinel.ErrUnavailable},
	}, nil)

	rec := get(t, router, fmt.Sprintf("/score/%s", subject))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetScore_MalformedAddressGets400(t *testing.T) {
	router := newRouter(nil, nil)
	rec := get(t, router, "/score/0x123")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshScore_ReEvaluates(t *testing.T) {
	source := &scoring.StaticSource{SourceName: "ethereum", IsMainnet: true,
		Signals: domain.ActivitySignals{HasMainnetInteraction: true}}
	router := newRouter([]scoring.ChainSource{source}, scoring.NewMemoryCache(time.Minute))

	rec := get(t, router, fmt.Sprintf("/score/%s", subject))
	require.Equal(t, http.StatusOK, rec.Code)

	source.Signals.HasDeployedContract = true

	// Plain GET still serves the cached score.
	rec = get(t, router, fmt.Sprintf("/score/%s", subject))
	var cached domain.ScoreResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cached))
	assert.Equal(t, 10, cached.Score)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/score/%s/refresh", subject), nil)
	refreshRec := httptest.NewRecorder()
	router.ServeHTTP(refreshRec, req)
	require.Equal(t, http.StatusOK, refreshRec.Code)

	var refreshed domain.ScoreResult
	require.NoError(t, json.Unmarshal(refreshRec.Body.Bytes(), &refreshed))
	assert.Equal(t, 50, refreshed.Score)
}
