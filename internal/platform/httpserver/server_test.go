package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	resultsservice "voteflow/contexts/voting/results-service"
	voteintake "voteflow/contexts/voting/vote-intake"
	"voteflow/contexts/voting/vote-intake/domain/entities"
	"voteflow/internal/platform/broadcast"

	"golang.org/x/time/rate"
)

type testServer struct {
	server  *Server
	intake  voteintake.Module
	results resultsservice.Module
	hub     *broadcast.Hub
}

func newTestServer(limiter *rate.Limiter) testServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := broadcast.NewHub(broadcast.Options{Logger: logger})
	intake := voteintake.NewInMemoryModule(entities.Options{OptionA: "Cats", OptionB: "Dogs", Hostname: "test-host"}, logger)
	results := resultsservice.NewInMemoryModule(map[string]string{"v1": "a", "v2": "b", "v3": "b"}, hub, logger)
	server := New(Options{
		Logger:         logger,
		Intake:         intake,
		Results:        results,
		Live:           broadcast.WebSocketHandler{Hub: hub, Logger: logger},
		RefreshLimiter: limiter,
	})
	return testServer{server: server, intake: intake, results: results, hub: hub}
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

func voterCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "voter_id" {
			return cookie
		}
	}
	return nil
}

func TestCastVoteJSONAssignsVoterCookie(t *testing.T) {
	ts := newTestServer(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/votes", strings.NewReader(`{"vote":"a"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := serve(ts.server, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d body=%s", rr.Code, rr.Body.String())
	}
	cookie := voterCookie(rr)
	if cookie == nil || cookie.Value != "voter-1" {
		t.Fatalf("expected voter cookie voter-1, got %+v", cookie)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["voter_id"] != "voter-1" || body["vote"] != "a" || body["queued"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
	if len(ts.intake.Queue.Payloads()) != 1 {
		t.Fatalf("expected one queued vote, got %d", len(ts.intake.Queue.Payloads()))
	}
}

func TestCastVoteFormKeepsExistingVoter(t *testing.T) {
	ts := newTestServer(nil)
	form := url.Values{"vote": {"b"}}
	req := httptest.NewRequest(http.MethodPost, "/api/votes", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "voter_id", Value: "returning-voter"})

	rr := serve(ts.server, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d body=%s", rr.Code, rr.Body.String())
	}
	payloads := ts.intake.Queue.Payloads()
	if len(payloads) != 1 || !strings.Contains(string(payloads[0]), `"voter_id":"returning-voter"`) {
		t.Fatalf("expected queued vote for returning-voter, got %s", payloads)
	}
}

func TestCastVoteRejectsUnknownChoice(t *testing.T) {
	ts := newTestServer(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/votes", strings.NewReader(`{"vote":"c"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := serve(ts.server, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/votes", strings.NewReader(`{"vote":`))
	req.Header.Set("Content-Type", "application/json")
	if rr := serve(ts.server, req); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", rr.Code)
	}
}

func TestCastVoteQueueOutageIsUnavailable(t *testing.T) {
	ts := newTestServer(nil)
	ts.intake.Queue.SetDown(true)
	req := httptest.NewRequest(http.MethodPost, "/api/votes", strings.NewReader(`{"vote":"a"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := serve(ts.server, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestOptionsReturnsLabels(t *testing.T) {
	ts := newTestServer(nil)
	rr := serve(ts.server, httptest.NewRequest(http.MethodGet, "/api/options", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["option_a"] != "Cats" || body["option_b"] != "Dogs" || body["hostname"] != "test-host" || body["voter_id"] == "" {
		t.Fatalf("unexpected options: %v", body)
	}
	if cookie := voterCookie(rr); cookie == nil || cookie.Value != body["voter_id"] {
		t.Fatalf("expected cookie to match voter id, got %+v", cookie)
	}
}

func TestRefreshReturnsAndBroadcastsTally(t *testing.T) {
	ts := newTestServer(nil)
	client, err := ts.hub.Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	<-client.Frames()
	if err := ts.hub.Subscribe(client, "scores"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	rr := serve(ts.server, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var body struct {
		Success bool             `json:"success"`
		Votes   map[string]int64 `json:"votes"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.Votes["a"] != 1 || body.Votes["b"] != 2 {
		t.Fatalf("unexpected refresh body: %s", rr.Body.String())
	}

	select {
	case frame := <-client.Frames():
		if string(frame) != `{"event":"scores","data":{"a":1,"b":2}}` {
			t.Fatalf("unexpected frame: %s", frame)
		}
	default:
		t.Fatal("expected refresh to broadcast the tally")
	}
}

func TestRefreshIsRateLimited(t *testing.T) {
	ts := newTestServer(rate.NewLimiter(rate.Limit(0.001), 1))
	if rr := serve(ts.server, httptest.NewRequest(http.MethodPost, "/api/refresh", nil)); rr.Code != http.StatusOK {
		t.Fatalf("expected first refresh to pass, got %d", rr.Code)
	}
	rr := serve(ts.server, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
}

func TestStatsAndExport(t *testing.T) {
	ts := newTestServer(nil)

	rr := serve(ts.server, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var stats struct {
		Total       int64          `json:"total"`
		Percentages map[string]int `json:"percentages"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 3 || stats.Percentages["a"] != 33 || stats.Percentages["b"] != 67 {
		t.Fatalf("unexpected stats: %s", rr.Body.String())
	}

	rr = serve(ts.server, httptest.NewRequest(http.MethodGet, "/api/export", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="voting-results.json"` {
		t.Fatalf("unexpected content disposition: %q", got)
	}
	var export struct {
		TotalVotes int64            `json:"total_votes"`
		Results    map[string]int64 `json:"results"`
		Winner     string           `json:"winner"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &export); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if export.TotalVotes != 3 || export.Results["cats"] != 1 || export.Results["dogs"] != 2 || export.Winner != "dogs" {
		t.Fatalf("unexpected export: %s", rr.Body.String())
	}
}

func TestResultsStoreOutageIsUnavailable(t *testing.T) {
	ts := newTestServer(nil)
	ts.results.Store.SetDown(true)

	for _, target := range []string{"/api/stats", "/api/export"} {
		rr := serve(ts.server, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503, got %d", target, rr.Code)
		}
	}
	rr := serve(ts.server, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("refresh: expected 503, got %d", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(nil)
	rr := serve(ts.server, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
