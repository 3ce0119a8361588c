package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	core "dupont_dashboard/pkg/core/analysis"
	"dupont_dashboard/pkg/core/batch"
	"dupont_dashboard/pkg/core/resolve"
	"dupont_dashboard/pkg/core/universe"

	"github.com/rs/zerolog/log"
)

// Service is the resolution entry point the handlers call into.
type Service interface {
	Resolve(ctx context.Context, company core.Company, year int, forceRefresh bool) (*core.AnalysisResult, error)
}

var (
	service   Service
	companies []core.Company
	exporter  *batch.Exporter
)

// InitHandler wires the package-level handler state.
func InitHandler(svc Service, coverage []core.Company, exp *batch.Exporter) {
	service = svc
	companies = coverage
	exporter = exp
}

type ReportRequest struct {
	Symbol       string `json:"symbol"`
	Year         int    `json:"year"`
	ForceRefresh bool   `json:"forceRefresh"`
}

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func writeCORS(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HandleReport serves POST /api/analysis/report. A rate-limited failure maps
// to 429 with the alternate-credential hint, a malformed provider payload to
// 502, anything else to 503.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	writeCORS(w, "POST")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" || req.Year == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "symbol and year are required"})
		return
	}

	company, ok := universe.Find(companies, symbol)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown company: %s", symbol)})
		return
	}

	res, err := service.Resolve(r.Context(), company, req.Year, req.ForceRefresh)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Int("year", req.Year).Msg("analysis resolution failed")
		switch {
		case resolve.IsRateLimited(err):
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Error: "provider quota exhausted",
				Hint:  "set GEMINI_FALLBACK_API_KEY to serve this request on alternate credentials",
			})
		case resolve.IsMalformedPayload(err):
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "provider returned an unusable payload"})
		default:
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// HandleCompanies serves GET /api/analysis/companies.
func HandleCompanies(w http.ResponseWriter, r *http.Request) {
	writeCORS(w, "GET")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"companies": companies})
}

// HandleExport serves GET /api/analysis/export?year=YYYY. Read-only: never
// triggers generation. 404 when no company has a cached analysis for the year.
func HandleExport(w http.ResponseWriter, r *http.Request) {
	writeCORS(w, "GET")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "year query parameter is required"})
		return
	}

	artifact, err := exporter.Collect(r.Context(), year)
	if err != nil {
		if errors.Is(err, batch.ErrNothingToExport) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, artifact)
}
