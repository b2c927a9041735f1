package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/record"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/tree"
	"github.com/DavidZachariahWC/trademarks-public/internal/strategy"
	healthuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/health"
	searchuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/search"
	suggestuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/suggest"
)

// --- Mocks ---

type mockSearchRepo struct {
	result   searchuc.Result
	err      error
	called   int
	lastPlan searchuc.Plan
}

func (m *mockSearchRepo) Fetch(_ context.Context, plan searchuc.Plan) (searchuc.Result, error) {
	m.called++
	m.lastPlan = plan
	return m.result, m.err
}

type mockSuggestRepo struct {
	out       []string
	err       error
	lastField string
	lastLimit int
}

func (m *mockSuggestRepo) Suggest(_ context.Context, field, _ string, limit int) ([]string, error) {
	m.lastField = field
	m.lastLimit = limit
	return m.out, m.err
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

type testEnv struct {
	router   http.Handler
	search   *mockSearchRepo
	suggest  *mockSuggestRepo
	registry *strategy.Registry
}

func newTestEnv(t *testing.T, dbErr error) *testEnv {
	t.Helper()
	registry := strategy.MustBuiltin()
	compiler, err := searchuc.NewCompiler(registry, 0)
	if err != nil {
		t.Fatalf("NewCompiler: %v", err)
	}
	t.Cleanup(compiler.Release)

	sr := &mockSearchRepo{}
	sg := &mockSuggestRepo{}
	searchSvc := searchuc.New(compiler, sr, searchuc.Config{MaxPerPage: 100, Limits: tree.DefaultLimits()})
	suggestSvc := suggestuc.New(sg, 0)
	healthSvc := healthuc.New(mockPinger{err: dbErr}, nil)

	srv := NewServer(searchSvc, suggestSvc, healthSvc, registry, 20, zap.NewNop())
	r := chi.NewRouter()
	srv.Routes(r)
	return &testEnv{router: r, search: sr, suggest: sg, registry: registry}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

// --- Tests ---

func TestCombinedSearch_ScoredResults(t *testing.T) {
	env := newTestEnv(t, nil)
	filed := time.Date(2020, 5, 17, 0, 0, 0, 0, time.UTC)
	sc := 92.5
	env.search.result = searchuc.Result{
		Total: 2,
		Records: []record.Record{
			{SerialNumber: 1001, MarkIdentification: "ACME", FilingDate: &filed, Score: &sc},
			{SerialNumber: 1002, MarkIdentification: "ACME WIDGETS"},
		},
	}

	rr := env.do("POST", "/api/combined_search",
		`{"filter_tree":{"operator":"OR","operands":[{"strategy":"wordmark","query":"acme"}]},"page":1,"per_page":10}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var raw struct {
		Results    []map[string]any `json:"results"`
		Pagination PaginationInfo   `json:"pagination"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(raw.Results))
	}
	first := raw.Results[0]
	if first["combined_score"] != 92.5 || first["match_quality"] != "Very High" {
		t.Errorf("unexpected scored record: %v", first)
	}
	if first["filing_date"] != "2020-05-17" {
		t.Errorf("expected filing_date 2020-05-17, got %v", first["filing_date"])
	}
	if _, ok := raw.Results[1]["combined_score"]; ok {
		t.Error("unscored record must omit combined_score")
	}
	if _, ok := raw.Results[1]["match_quality"]; ok {
		t.Error("unscored record must omit match_quality")
	}
	want := PaginationInfo{CurrentPage: 1, TotalPages: 1, TotalResults: 2, PerPage: 10}
	if raw.Pagination != want {
		t.Errorf("expected %+v, got %+v", want, raw.Pagination)
	}
	if env.search.lastPlan.Scores.IsZero() {
		t.Error("expected scored plan for a wordmark leaf")
	}
}

func TestCombinedSearch_EmptyTree(t *testing.T) {
	env := newTestEnv(t, nil)

	for name, body := range map[string]string{
		"no body":     "",
		"empty body":  "{}",
		"null tree":   `{"filter_tree":null}`,
		"empty tree":  `{"filter_tree":{}}`,
		"only paging": `{"per_page":15}`,
	} {
		t.Run(name, func(t *testing.T) {
			rr := env.do("POST", "/api/combined_search", body)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp SearchResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Results == nil || len(resp.Results) != 0 {
				t.Errorf("expected empty results array, got %v", resp.Results)
			}
			if resp.Pagination.CurrentPage != 1 || resp.Pagination.TotalPages != 0 || resp.Pagination.TotalResults != 0 {
				t.Errorf("unexpected pagination %+v", resp.Pagination)
			}
		})
	}
	if env.search.called != 0 {
		t.Error("store must not be called for empty trees")
	}

	rr := env.do("POST", "/api/combined_search", `{"per_page":15}`)
	var resp SearchResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Pagination.PerPage != 15 {
		t.Errorf("expected per_page 15, got %d", resp.Pagination.PerPage)
	}
	rr = env.do("POST", "/api/combined_search", `{}`)
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Pagination.PerPage != 20 {
		t.Errorf("expected default per_page 20, got %d", resp.Pagination.PerPage)
	}
}

func TestCombinedSearch_StringPaging(t *testing.T) {
	env := newTestEnv(t, nil)
	env.search.result = searchuc.Result{Total: 50}

	rr := env.do("POST", "/api/combined_search",
		`{"filter_tree":{"strategy":"section_8","query":""},"page":"3","per_page":"10"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if env.search.lastPlan.Offset != 20 || env.search.lastPlan.Limit != 10 {
		t.Errorf("expected offset 20 limit 10, got %d/%d", env.search.lastPlan.Offset, env.search.lastPlan.Limit)
	}
}

func TestCombinedSearch_BadRequests(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		body string
		code ErrorResponseCode
	}{
		{"malformed json", `{"filter_tree":`, ErrorResponseCodeBadRequest},
		{"non-numeric page", `{"page":"two"}`, ErrorResponseCodeBadRequest},
		{"operator without operands", `{"filter_tree":{"operator":"AND"}}`, ErrorResponseCodeInvalidTree},
		{"bad nested node", `{"filter_tree":{"operator":"OR","operands":[{"strategy":"section_8"},{"query":"x"}]}}`,
			ErrorResponseCodeInvalidTree},
		{"zero per_page", `{"filter_tree":{"strategy":"section_8"},"per_page":0}`, ErrorResponseCodeBadRequest},
		{"per_page above max", `{"filter_tree":{"strategy":"section_8"},"per_page":101}`, ErrorResponseCodeBadRequest},
		{"zero page", `{"filter_tree":{"strategy":"section_8"},"page":0}`, ErrorResponseCodeBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do("POST", "/api/combined_search", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if resp := decodeError(t, rr); resp.Code != tc.code {
				t.Errorf("expected code %s, got %s (%s)", tc.code, resp.Code, resp.Message)
			}
		})
	}
	if env.search.called != 0 {
		t.Error("store must not be called for rejected requests")
	}
}

func TestCombinedSearch_InvalidTreeReportsPath(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do("POST", "/api/combined_search",
		`{"filter_tree":{"operator":"OR","operands":[{"strategy":"section_8"},{"query":"x"}]}}`)
	resp := decodeError(t, rr)
	if !strings.Contains(resp.Message, "operands[1]") {
		t.Errorf("expected message to name the bad node, got %q", resp.Message)
	}
}

func TestCombinedSearch_StoreTimeout(t *testing.T) {
	env := newTestEnv(t, nil)
	env.search.err = fmt.Errorf("%w: context deadline exceeded", domain.ErrStoreTimeout)

	rr := env.do("POST", "/api/combined_search", `{"filter_tree":{"strategy":"section_8"}}`)
	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != ErrorResponseCodeStoreTimeout {
		t.Errorf("expected store_timeout, got %s", resp.Code)
	}
}

func TestCombinedSearch_StoreFailureHidesDetail(t *testing.T) {
	env := newTestEnv(t, nil)
	env.search.err = fmt.Errorf("%w: dial tcp 10.0.0.5:5432: connection refused", domain.ErrStoreUnavailable)

	rr := env.do("POST", "/api/combined_search", `{"filter_tree":{"strategy":"section_8"}}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Code != ErrorResponseCodeInternalError || resp.Message != "internal error" {
		t.Errorf("unexpected error response %+v", resp)
	}
	if strings.Contains(rr.Body.String(), "10.0.0.5") {
		t.Error("store detail leaked to client")
	}
}

func TestCombinedSearch_UnknownStrategyDegrades(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do("POST", "/api/combined_search",
		`{"filter_tree":{"operator":"AND","operands":[{"strategy":"section_8"},{"strategy":"no_such_strategy","query":"x"}]}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if env.search.called != 0 {
		t.Error("AND with a degraded operand must not reach the store")
	}
}

func TestAutocomplete(t *testing.T) {
	env := newTestEnv(t, nil)
	env.suggest.out = []string{"ACME", "ACME WIDGETS"}

	rr := env.do("GET", "/api/autocomplete?prefix=ac&type=attorney", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp SuggestResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Suggestions) != 2 {
		t.Errorf("expected 2 suggestions, got %v", resp.Suggestions)
	}
	if env.suggest.lastField != "attorney" || env.suggest.lastLimit != suggestuc.DefaultLimit {
		t.Errorf("unexpected store call: field=%q limit=%d", env.suggest.lastField, env.suggest.lastLimit)
	}
}

func TestAutocomplete_DefaultsToMark(t *testing.T) {
	env := newTestEnv(t, nil)
	env.suggest.out = []string{"ACME"}

	rr := env.do("GET", "/api/autocomplete?prefix=ac", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if env.suggest.lastField != "mark" {
		t.Errorf("expected mark field, got %q", env.suggest.lastField)
	}
}

func TestAutocomplete_EmptyPrefix(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do("GET", "/api/autocomplete", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"suggestions":[]`)) {
		t.Errorf("expected empty suggestions array, got %s", rr.Body.String())
	}
}

func TestAutocomplete_UnknownType(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do("GET", "/api/autocomplete?prefix=ac&type=owner", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestAutocomplete_StoreError(t *testing.T) {
	env := newTestEnv(t, nil)
	env.suggest.err = errors.New("boom")

	rr := env.do("GET", "/api/autocomplete?prefix=ac", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestListStrategies(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do("GET", "/api/strategies", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp StrategyListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != env.registry.Len() || len(resp.Strategies) != resp.Count {
		t.Fatalf("expected %d strategies, got %d", env.registry.Len(), resp.Count)
	}

	byName := make(map[string]StrategyItem, len(resp.Strategies))
	for _, s := range resp.Strategies {
		byName[s.Name] = s
	}
	if s, ok := byName["wordmark"]; !ok || !s.Scoring {
		t.Errorf("expected scoring wordmark strategy, got %+v", s)
	}
	if s, ok := byName["section_8"]; !ok || s.Scoring {
		t.Errorf("expected unscored section_8 strategy, got %+v", s)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		dbErr  error
		status int
		want   string
	}{
		{"healthy", nil, http.StatusOK, "ok"},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable, "error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, tc.dbErr)
			rr := env.do("GET", "/health", "")
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			var resp HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tc.want {
				t.Errorf("expected status %q, got %q", tc.want, resp.Status)
			}
			if _, ok := resp.Checks["database"]; !ok {
				t.Error("expected database check")
			}
		})
	}
}

func TestNotFoundRoute(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do("GET", "/api/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != ErrorResponseCodeNotFound {
		t.Errorf("expected not_found, got %s", resp.Code)
	}
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{`3`, 3, false},
		{`"7"`, 7, false},
		{`" 12 "`, 12, false},
		{`"x"`, 0, true},
		{`1.5`, 0, true},
	}
	for _, tc := range tests {
		var f flexInt
		err := f.UnmarshalJSON([]byte(tc.in))
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: unexpected error state %v", tc.in, err)
			continue
		}
		if !tc.wantErr && int(f) != tc.want {
			t.Errorf("%s: got %d, want %d", tc.in, f, tc.want)
		}
	}
}
