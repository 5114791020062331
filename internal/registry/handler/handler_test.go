package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"chainpass/internal/domain"
	"chainpass/internal/events"
	"chainpass/internal/recordlog"
	"chainpass/internal/registry"
	id "chainpass/pkg/domain"
	"chainpass/pkg/requestcontext"
)

var (
	authority = id.MustAddress("0x" + strings.Repeat("aa", 20))
	stranger  = id.MustAddress("0x" + strings.Repeat("bb", 20))
)

// HandlerSuite exercises the registry endpoints against a real in-memory
// service; the suite's caller field plays the role of auth middleware.
type HandlerSuite struct {
	suite.Suite
	router http.Handler
	caller id.Address
}

func (s *HandlerSuite) SetupTest() {
	svc := registry.NewService(
		authority,
		recordlog.NewMemoryLog[domain.ProjectEntry](),
		events.NopPublisher{},
		nil,
		nil,
	)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !s.caller.IsZero() {
				req = req.WithContext(requestcontext.WithCaller(req.Context(), s.caller))
			}
			next.ServeHTTP(w, req)
		})
	})
	New(svc, nil, false).Register(r)
	s.router = r
	s.caller = authority
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) addProject(title, contentRef string) *httptest.ResponseRecorder {
	body, err := json.Marshal(AddProjectRequest{Title: title, ContentRef: contentRef})
	require.NoError(s.T(), err)
	req := httptest.NewRequest(http.MethodPost, "/registry/projects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestAddProject_Created() {
	rec := s.addProject("Rollup Audit", "bafkreibm6jg3ux5qumhcn2b3flc3tyu6dmlb4xa7u5bf44yegnrjhc4yeq")
	require.Equal(s.T(), http.StatusCreated, rec.Code)

	var resp struct {
		ID int `json:"id"`
	}
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(s.T(), 0, resp.ID)
}

func (s *HandlerSuite) TestAddProject_StrangerGets401() {
	s.caller = stranger
	rec := s.addProject("Rollup Audit", "ref")
	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestAddProject_AnonymousGets401() {
	s.caller = id.ZeroAddress
	rec := s.addProject("Rollup Audit", "ref")
	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestAddProject_EmptyTitleGets400() {
	rec := s.addProject("   ", "ref")
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestAddProject_InvalidJSON() {
	req := httptest.NewRequest(http.MethodPost, "/registry/projects", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestListProjects_EmptyIsArray() {
	req := httptest.NewRequest(http.MethodGet, "/registry/projects", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	assert.JSONEq(s.T(), "[]", rec.Body.String())
}

func (s *HandlerSuite) TestGetProject_RoundTrip() {
	require.Equal(s.T(), http.StatusCreated, s.addProject("Bridge Monitor", "ref-0").Code)
	require.Equal(s.T(), http.StatusCreated, s.addProject("Sequencer Watch", "ref-1").Code)

	req := httptest.NewRequest(http.MethodGet, "/registry/projects/1", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var entry domain.ProjectEntry
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(s.T(), 1, entry.ID)
	assert.Equal(s.T(), "Sequencer Watch", entry.Title)

	countReq := httptest.NewRequest(http.MethodGet, "/registry/projects/count", nil)
	countRec := httptest.NewRecorder()
	s.router.ServeHTTP(countRec, countReq)
	require.Equal(s.T(), http.StatusOK, countRec.Code)
	assert.JSONEq(s.T(), `{"count":2}`, countRec.Body.String())
}

func (s *HandlerSuite) TestGetProject_AbsentIndexGets404() {
	req := httptest.NewRequest(http.MethodGet, "/registry/projects/7", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestGetProject_NonIntegerIndexGets400() {
	req := httptest.NewRequest(http.MethodGet, "/registry/projects/first", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func TestStrictContentRefs(t *testing.T) {
	svc := registry.NewService(authority, recordlog.NewMemoryLog[domain.ProjectEntry](), events.NopPublisher{}, nil, nil)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(requestcontext.WithCaller(req.Context(), authority)))
		})
	})
	New(svc, nil, true).Register(r)

	post := func(contentRef string) int {
		body, _ := json.Marshal(AddProjectRequest{Title: "Indexer", ContentRef: contentRef})
		req := httptest.NewRequest(http.MethodPost, "/registry/projects", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusBadRequest, post("not-a-cid"))
	assert.Equal(t, http.StatusCreated, post("bafkreibm6jg3ux5qumhcn2b3flc3tyu6dmlb4xa7u5bf44yegnrjhc4yeq"))
}
