package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/tree"
	logpkg "github.com/DavidZachariahWC/trademarks-public/internal/logger"
	"github.com/DavidZachariahWC/trademarks-public/internal/strategy"
	healthuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/health"
	searchuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/search"
	suggestuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/suggest"
)

// maxBodyBytes caps the combined search request body.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the tmsearch HTTP API.
type Server struct {
	search         *searchuc.Service
	suggest        *suggestuc.Service
	health         *healthuc.Service
	strategies     []strategy.Entry
	defaultPerPage int
	logger         *zap.Logger
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	suggest *suggestuc.Service,
	health *healthuc.Service,
	registry *strategy.Registry,
	defaultPerPage int,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:         search,
		suggest:        suggest,
		health:         health,
		strategies:     registry.Entries(),
		defaultPerPage: defaultPerPage,
		logger:         logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidTree, http.StatusBadRequest, ErrorResponseCodeInvalidTree),
		sentinelHandler(domain.ErrTreeTooLarge, http.StatusBadRequest, ErrorResponseCodeInvalidTree),
		sentinelHandler(domain.ErrInvalidPagination, http.StatusBadRequest, ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrInvalidSuggestType, http.StatusBadRequest, ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrStoreTimeout, http.StatusGatewayTimeout, ErrorResponseCodeStoreTimeout),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/combined_search", s.CombinedSearch)
	r.Get("/api/autocomplete", s.Autocomplete)
	r.Get("/api/strategies", s.ListStrategies)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponseCodeBadRequest, "method not allowed")
	})
}

// CombinedSearch handles POST /api/combined_search.
func (s *Server) CombinedSearch(w http.ResponseWriter, r *http.Request) {
	var req CombinedSearchRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	root, err := tree.Decode(req.FilterTree)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, perPage := 1, s.defaultPerPage
	if req.Page != nil {
		page = int(*req.Page)
	}
	if req.PerPage != nil {
		perPage = int(*req.PerPage)
	}

	result, err := s.search.Search(r.Context(), root, page, perPage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(result))
}

// Autocomplete handles GET /api/autocomplete.
func (s *Server) Autocomplete(w http.ResponseWriter, r *http.Request) {
	var prefix, kind *string
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "prefix", query, &prefix); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid prefix: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "type", query, &kind); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid type: "+err.Error())
		return
	}

	field, err := suggestuc.ParseField(derefString(kind))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	suggestions, err := s.suggest.Suggest(r.Context(), field, derefString(prefix))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SuggestResponse{Suggestions: suggestions})
}

// ListStrategies handles GET /api/strategies.
func (s *Server) ListStrategies(w http.ResponseWriter, _ *http.Request) {
	items := make([]StrategyItem, len(s.strategies))
	for i, e := range s.strategies {
		items[i] = StrategyItem{Name: e.Name, Family: string(e.Family), Scoring: e.Scoring}
	}
	writeJSON(w, http.StatusOK, StrategyListResponse{Strategies: items, Count: len(items)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing store internals.
// Input errors describe the caller's own request and are returned as is.
func safeDomainMessage(err error) string {
	inputErrors := []error{
		domain.ErrInvalidTree,
		domain.ErrTreeTooLarge,
		domain.ErrInvalidPagination,
		domain.ErrInvalidSuggestType,
	}
	for _, s := range inputErrors {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	if errors.Is(err, domain.ErrStoreTimeout) {
		return domain.ErrStoreTimeout.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
