package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"docketline/internal/config"
	"docketline/internal/db"
	"docketline/internal/engine"
	"docketline/internal/migrate"
)

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e, err := engine.New(conn, config.Default(), zap.NewNop())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	handler, err := New(Config{Engine: e, BasePath: "/v0"})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func createTestCase(t *testing.T, srv *testServer) string {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/cases", map[string]any{
		"title":        "Smith v. Jones",
		"case_number":  "2026-CA-001234",
		"jurisdiction": "florida_state",
		"court_type":   "civil",
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create case: %d %s", res.StatusCode, string(data))
	}
	var created CaseResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal case: %v", err)
	}
	return created.ID
}

func TestTriggerToDeadlinesFlow(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	caseID := createTestCase(t, srv)

	fireRes, fireBody := doJSON(t, client, http.MethodPost, srv.URL+"/v0/cases/"+caseID+"/triggers", map[string]any{
		"document_type": "Uniform Trial Order",
		"trigger_date":  "2027-01-04",
	}, nil)
	if fireRes.StatusCode != http.StatusOK {
		t.Fatalf("fire trigger: %d %s", fireRes.StatusCode, string(fireBody))
	}
	var fired engine.TriggerResult
	if err := json.Unmarshal(fireBody, &fired); err != nil {
		t.Fatalf("unmarshal trigger result: %v", err)
	}
	if !fired.Matched || fired.TriggerType != "trial_date" {
		t.Fatalf("trigger result = %+v", fired)
	}
	if len(fired.Deadlines) < 10 {
		t.Fatalf("got %d deadlines", len(fired.Deadlines))
	}

	listRes, listBody := doJSON(t, client, http.MethodGet, srv.URL+"/v0/cases/"+caseID+"/deadlines?priority=critical", nil, nil)
	if listRes.StatusCode != http.StatusOK {
		t.Fatalf("list deadlines: %d %s", listRes.StatusCode, string(listBody))
	}
	var listed []DeadlineResponse
	if err := json.Unmarshal(listBody, &listed); err != nil {
		t.Fatalf("unmarshal deadlines: %v", err)
	}
	if len(listed) == 0 {
		t.Fatal("expected critical deadlines in the trial order chain")
	}

	target := fired.Deadlines[0]
	patchRes, patchBody := doJSON(t, client, http.MethodPatch, srv.URL+"/v0/deadlines/"+target.ID, map[string]any{
		"date":   "2026-11-02",
		"reason": "stipulated extension",
	}, map[string]string{"X-Actor-Id": "paralegal-1"})
	if patchRes.StatusCode != http.StatusOK {
		t.Fatalf("patch deadline: %d %s", patchRes.StatusCode, string(patchBody))
	}
	var patched DeadlineResponse
	if err := json.Unmarshal(patchBody, &patched); err != nil {
		t.Fatalf("unmarshal patched: %v", err)
	}
	if patched.DeadlineDate != "2026-11-02" {
		t.Fatalf("patched date = %s", patched.DeadlineDate)
	}
	if patched.OriginalDeadlineDate == nil || *patched.OriginalDeadlineDate != target.DeadlineDate {
		t.Fatalf("original date = %v, want %s", patched.OriginalDeadlineDate, target.DeadlineDate)
	}

	histRes, histBody := doJSON(t, client, http.MethodGet, srv.URL+"/v0/deadlines/"+target.ID+"/history", nil, nil)
	if histRes.StatusCode != http.StatusOK {
		t.Fatalf("history: %d %s", histRes.StatusCode, string(histBody))
	}
	var history []HistoryResponse
	if err := json.Unmarshal(histBody, &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(history) != 1 || history[0].ChangeType != "manual" || history[0].ActorID != "paralegal-1" {
		t.Fatalf("history = %+v", history)
	}
}

func TestUnmatchedTriggerIsSoft(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	caseID := createTestCase(t, srv)

	res, body := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/cases/"+caseID+"/triggers", map[string]any{
		"document_type": "Grocery List",
		"trigger_date":  "2026-03-02",
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("fire trigger: %d %s", res.StatusCode, string(body))
	}
	var fired engine.TriggerResult
	if err := json.Unmarshal(body, &fired); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fired.Matched || fired.Reason == "" {
		t.Fatalf("result = %+v", fired)
	}
}

func TestNotFoundEnvelope(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	res, body := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/deadlines/nope", nil, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d %s", res.StatusCode, string(body))
	}
	var envelope struct {
		Error apiErrorBody `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Error.Code != "not_found" {
		t.Fatalf("code = %q", envelope.Error.Code)
	}
}

func TestCompletedDeadlineRejectsDateMove(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	caseID := createTestCase(t, srv)

	createRes, createBody := doJSON(t, client, http.MethodPost, srv.URL+"/v0/cases/"+caseID+"/deadlines", map[string]any{
		"title": "File answer",
		"date":  "2026-04-01",
	}, nil)
	if createRes.StatusCode != http.StatusCreated {
		t.Fatalf("create deadline: %d %s", createRes.StatusCode, string(createBody))
	}
	var created DeadlineResponse
	_ = json.Unmarshal(createBody, &created)

	doneRes, doneBody := doJSON(t, client, http.MethodPatch, srv.URL+"/v0/deadlines/"+created.ID, map[string]any{
		"status": "completed",
	}, nil)
	if doneRes.StatusCode != http.StatusOK {
		t.Fatalf("complete: %d %s", doneRes.StatusCode, string(doneBody))
	}

	moveRes, moveBody := doJSON(t, client, http.MethodPatch, srv.URL+"/v0/deadlines/"+created.ID, map[string]any{
		"date": "2026-05-01",
	}, nil)
	if moveRes.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict moving completed deadline, got %d %s", moveRes.StatusCode, string(moveBody))
	}
}
