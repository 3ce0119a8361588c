package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	core "dupont_dashboard/pkg/core/analysis"
	"dupont_dashboard/pkg/core/batch"
	"dupont_dashboard/pkg/core/resilience"
	"dupont_dashboard/pkg/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	res *core.AnalysisResult
	err error
}

func (s *stubService) Resolve(ctx context.Context, company core.Company, year int, force bool) (*core.AnalysisResult, error) {
	return s.res, s.err
}

type stubCache struct {
	entries map[string]*core.AnalysisResult
}

func (s *stubCache) Get(ctx context.Context, key string) (*core.AnalysisResult, bool, error) {
	res, ok := s.entries[key]
	return res, ok, nil
}

func (s *stubCache) Set(ctx context.Context, key string, res *core.AnalysisResult) error {
	s.entries[key] = res
	return nil
}

func (s *stubCache) Has(ctx context.Context, key string) (bool, error) {
	_, ok := s.entries[key]
	return ok, nil
}

var testCompanies = []core.Company{
	{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Technology"},
}

func setup(t *testing.T, svc Service, cache *stubCache) {
	t.Helper()
	if cache == nil {
		cache = &stubCache{entries: map[string]*core.AnalysisResult{}}
	}
	InitHandler(svc, testCompanies, batch.NewExporter(testCompanies, store.NewPrecomputedSet(), cache))
}

func postReport(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analysis/report", strings.NewReader(body))
	rec := httptest.NewRecorder()
	HandleReport(rec, req)
	return rec
}

func TestReportReturnsAnalysis(t *testing.T) {
	res := &core.AnalysisResult{
		Company:    core.Company{Symbol: "AAPL"},
		AnchorYear: 2024,
	}
	setup(t, &stubService{res: res}, nil)

	rec := postReport(t, `{"symbol":"aapl","year":2024}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got core.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "AAPL", got.Company.Symbol)
	assert.Equal(t, 2024, got.AnchorYear)
}

func TestReportRejectsUnknownSymbol(t *testing.T) {
	setup(t, &stubService{}, nil)
	rec := postReport(t, `{"symbol":"ZZZZ","year":2024}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportRequiresSymbolAndYear(t *testing.T) {
	setup(t, &stubService{}, nil)
	rec := postReport(t, `{"symbol":"AAPL"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportMapsRateLimitWithRemediationHint(t *testing.T) {
	err := errors.New("429 Quota exceeded for the day")
	setup(t, &stubService{err: err}, nil)

	rec := postReport(t, `{"symbol":"AAPL","year":2024}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp struct {
		Error string `json:"error"`
		Hint  string `json:"hint"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Hint, "GEMINI_FALLBACK_API_KEY")
}

func TestReportMapsExhaustedRetriesToRateLimit(t *testing.T) {
	setup(t, &stubService{err: resilience.ErrMaxRetries}, nil)
	rec := postReport(t, `{"symbol":"AAPL","year":2024}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestReportMapsGenericFailureToUnavailable(t *testing.T) {
	setup(t, &stubService{err: errors.New("backend down")}, nil)
	rec := postReport(t, `{"symbol":"AAPL","year":2024}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCompaniesListsUniverse(t *testing.T) {
	setup(t, &stubService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/companies", nil)
	rec := httptest.NewRecorder()
	HandleCompanies(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Companies []core.Company `json:"companies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Companies, 2)
	assert.Equal(t, "AAPL", resp.Companies[0].Symbol)
}

func TestExportEmptyCacheIsNotFound(t *testing.T) {
	setup(t, &stubService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/export?year=2024", nil)
	rec := httptest.NewRecorder()
	HandleExport(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportReturnsArtifact(t *testing.T) {
	cache := &stubCache{entries: map[string]*core.AnalysisResult{
		store.Key("AAPL", 2024): {Company: core.Company{Symbol: "AAPL"}, AnchorYear: 2024},
	}}
	setup(t, &stubService{}, cache)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/export?year=2024", nil)
	rec := httptest.NewRecorder()
	HandleExport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var artifact batch.ExportArtifact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &artifact))
	assert.Equal(t, 1, artifact.Found)
	assert.Equal(t, 2, artifact.Total)
	assert.Contains(t, artifact.Entries, "AAPL:2024")
}

func TestExportRequiresYear(t *testing.T) {
	setup(t, &stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/analysis/export", nil)
	rec := httptest.NewRecorder()
	HandleExport(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
