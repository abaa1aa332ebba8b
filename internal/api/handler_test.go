package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
	"github.com/acpoke/acpoke-bridge/internal/biz/usecase"
	"github.com/acpoke/acpoke-bridge/internal/data"
	"github.com/acpoke/acpoke-bridge/onebot"
)

// fakeAdapter records action paths and acknowledges the ones listed in ok
type fakeAdapter struct {
	mu    sync.Mutex
	ok    map[string]bool
	paths []string
}

func (f *fakeAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	ok := f.ok[r.URL.Path]
	f.mu.Unlock()

	if ok {
		w.Write([]byte(`{"status":"ok","retcode":0}`))
		return
	}
	w.Write([]byte(`{"status":"failed","retcode":1404,"msg":"API不存在"}`))
}

func newTestServer(t *testing.T, adapter *fakeAdapter) *Server {
	t.Helper()
	srv := httptest.NewServer(adapter)
	t.Cleanup(srv.Close)

	repos, err := data.NewRepositories(onebot.NewClientWithBaseURL(srv.URL, time.Second), filepath.Join(t.TempDir(), "acpoke.db"))
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	t.Cleanup(func() { repos.Close() })

	logger := zap.NewNop()
	shapes, err := usecase.BuildShapes(nil, "")
	if err != nil {
		t.Fatalf("Failed to build shapes: %v", err)
	}
	pokeUC := usecase.NewPokeUsecase(
		usecase.NewResolverUsecase(repos.Directory, repos.Membership, repos.Contacts, nil, logger),
		usecase.NewCooldownUsecase(domain.DefaultCooldownWindow),
		usecase.NewDispatchUsecase(repos.Gesture, shapes, time.Second, logger),
		usecase.NewRecorderUsecase(repos.Action, repos.Message, false, logger),
		usecase.PokeConfig{Enabled: true},
		logger,
	)
	return NewServer(pokeUC, repos.Action, repos.Directory, "127.0.0.1:0", logger)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandlePoke(t *testing.T) {
	adapter := &fakeAdapter{ok: map[string]bool{"/group_poke": true}}
	server := newTestServer(t, adapter)
	h := server.Handler()

	w := doJSON(t, h, http.MethodPost, "/api/poke", PokeRequest{
		UserID:         "42",
		Reason:         "打招呼",
		ChatID:         "chat-1",
		MessageGroupID: "99",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp PokeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !resp.OK || resp.Status != "succeeded" || resp.Message != usecase.MsgSucceeded {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if resp.UserID != "42" || resp.GroupID != "99" {
		t.Errorf("Unexpected target: %s/%s", resp.UserID, resp.GroupID)
	}

	// qq_id and target_id shapes are rejected before the direct shape succeeds
	want := []string{"/send_poke", "/send_poke", "/group_poke"}
	if len(adapter.paths) != len(want) {
		t.Fatalf("Expected %d adapter calls, got %v", len(want), adapter.paths)
	}
	for i := range want {
		if adapter.paths[i] != want[i] {
			t.Errorf("Call %d: expected %s, got %s", i, want[i], adapter.paths[i])
		}
	}

	// Same target again is suppressed
	w = doJSON(t, h, http.MethodPost, "/api/poke", PokeRequest{UserID: "42", ChatID: "chat-1", MessageGroupID: "99"})
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.OK || resp.Status != "suppressed" {
		t.Errorf("Expected suppressed, got %+v", resp)
	}

	// The success shows up in the action log
	w = doJSON(t, h, http.MethodGet, "/api/actions?chat_id=chat-1", nil)
	var actions struct {
		Actions []domain.ActionRecord `json:"actions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &actions); err != nil {
		t.Fatalf("Failed to parse actions: %v", err)
	}
	if len(actions.Actions) != 1 {
		t.Fatalf("Expected 1 action, got %d", len(actions.Actions))
	}
	if actions.Actions[0].Display != "使用了戳一戳，原因：打招呼" {
		t.Errorf("Unexpected display: %s", actions.Actions[0].Display)
	}
}

func TestHandlePoke_Failure(t *testing.T) {
	server := newTestServer(t, &fakeAdapter{})

	w := doJSON(t, server.Handler(), http.MethodPost, "/api/poke", PokeRequest{UserID: "42", SenderID: "7"})

	var resp PokeResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.OK || resp.Status != "failed" {
		t.Errorf("Expected failed, got %+v", resp)
	}
}

func TestHandlePoke_Unresolved(t *testing.T) {
	server := newTestServer(t, &fakeAdapter{})

	w := doJSON(t, server.Handler(), http.MethodPost, "/api/poke", PokeRequest{UserID: "nobody-known"})

	var resp PokeResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Message != usecase.MsgNoTarget {
		t.Errorf("Expected %q, got %q", usecase.MsgNoTarget, resp.Message)
	}
}

func TestHandlePoke_BadRequests(t *testing.T) {
	server := newTestServer(t, &fakeAdapter{})
	h := server.Handler()

	if w := doJSON(t, h, http.MethodGet, "/api/poke", nil); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodPost, "/api/poke", PokeRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/poke", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", w.Code)
	}
}

func TestHandlePersons(t *testing.T) {
	adapter := &fakeAdapter{ok: map[string]bool{"/friend_poke": true}}
	server := newTestServer(t, adapter)
	h := server.Handler()

	w := doJSON(t, h, http.MethodPost, "/api/persons", PersonRequest{UserID: "20002", PersonName: "Alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodGet, "/api/persons?name=ali", nil)
	var result struct {
		Persons []Person `json:"persons"`
	}
	json.Unmarshal(w.Body.Bytes(), &result)
	if len(result.Persons) != 1 || result.Persons[0].UserID != "20002" {
		t.Fatalf("Unexpected persons: %+v", result.Persons)
	}

	// The directory now resolves the name
	w = doJSON(t, h, http.MethodPost, "/api/poke", PokeRequest{UserID: "Alice", SenderID: "7"})
	var resp PokeResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.OK || resp.UserID != "20002" {
		t.Errorf("Expected poke of 20002, got %+v", resp)
	}

	if w := doJSON(t, h, http.MethodPost, "/api/persons", PersonRequest{UserID: "abc", PersonName: "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-numeric user_id, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodPost, "/api/persons", PersonRequest{UserID: "1"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing name, got %d", w.Code)
	}
}

func TestHandlePokeInfo(t *testing.T) {
	server := newTestServer(t, &fakeAdapter{})

	w := doJSON(t, server.Handler(), http.MethodGet, "/api/actions/poke/info", nil)

	var info domain.ActionInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if info.Name != "poke" || len(info.Parameters) != 5 {
		t.Errorf("Unexpected action info: %+v", info)
	}
	if !info.Parameters[0].Required {
		t.Error("Expected user_id to be required")
	}
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, &fakeAdapter{})

	w := doJSON(t, server.Handler(), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("Unexpected health response: %d %q", w.Code, w.Body.String())
	}
}
