package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fortuna/services/playbyplay-service/internal/fanout"
	"github.com/fortuna/services/playbyplay-service/internal/handlers"
	"github.com/fortuna/services/playbyplay-service/internal/storage"
	"github.com/fortuna/services/playbyplay-service/pkg/models"
	"github.com/gorilla/websocket"
)

type fakeInvoker struct {
	mu       sync.Mutex
	payloads []string
	done     chan struct{}
}

func (f *fakeInvoker) Invoke(_ context.Context, payload []byte) error {
	f.mu.Lock()
	f.payloads = append(f.payloads, string(payload))
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

type testServer struct {
	server    *httptest.Server
	hub       *fanout.Hub
	artifacts *storage.Artifacts
	invoker   *fakeInvoker
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := fanout.NewHub(fanout.NewMemorySubscriptions())
	go hub.Run(ctx)

	store := storage.NewMemoryStore()
	ts := &testServer{
		hub:       hub,
		artifacts: storage.NewArtifacts(store, nil),
		invoker:   &fakeInvoker{done: make(chan struct{}, 1)},
	}
	h := handlers.NewHandler(ctx, hub, store, ts.invoker)
	ts.server = httptest.NewServer(handlers.NewRouter(h, []string{"*"}))
	t.Cleanup(ts.server.Close)
	return ts
}

func noGzipClient() *http.Client {
	return &http.Client{Transport: &http.Transport{DisableCompression: true}}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.server.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", body["status"])
	}
}

func TestGetSchedule(t *testing.T) {
	ts := newTestServer(t)
	entries := []models.ScheduleEntry{{ID: "2024-01-15-lal-bos", Date: "2024-01-15", HomeTeam: "BOS", AwayTeam: "LAL"}}
	if err := ts.artifacts.SaveSchedule(context.Background(), "2024-01-15", entries); err != nil {
		t.Fatal(err)
	}

	client := noGzipClient()
	resp, err := client.Get(ts.server.URL + "/api/v1/schedule/2024-01-15")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Encoding"); got != "gzip" {
		t.Errorf("Expected gzip encoding, got %q", got)
	}
	if got := resp.Header.Get("Cache-Control"); got != storage.CacheVolatile {
		t.Errorf("Expected volatile cache directive, got %q", got)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("Expected an ETag")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.server.URL+"/api/v1/schedule/2024-01-15", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("Expected 304 for matching ETag, got %d", resp.StatusCode)
	}
}

func TestGetArtifact_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path     string
		expected int
	}{
		{"/api/v1/schedule/2024-1-15", http.StatusBadRequest},
		{"/api/v1/schedule/2024-01-15", http.StatusNotFound},
		{"/api/v1/gamepack/2024-01-15-lal-bos", http.StatusNotFound},
		{"/api/v1/init", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.server.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, resp.StatusCode)
			}
		})
	}
}

func TestGetGamepack_Final(t *testing.T) {
	ts := newTestServer(t)
	pack := &models.Gamepack{PublicID: "2024-01-15-lal-bos"}
	if err := ts.artifacts.SaveGamepack(context.Background(), pack, true); err != nil {
		t.Fatal(err)
	}

	resp, err := noGzipClient().Get(ts.server.URL + "/api/v1/gamepack/2024-01-15-lal-bos")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Cache-Control"); got != storage.CacheImmutable {
		t.Errorf("Expected immutable cache directive, got %q", got)
	}
}

func TestInvoke(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.server.URL+"/api/v1/invoke", "application/json", strings.NewReader(`{"task":"manager"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", resp.StatusCode)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["task"] != "manager" {
		t.Errorf("Expected manager task, got %q", body["task"])
	}

	select {
	case <-ts.invoker.done:
	case <-time.After(time.Second):
		t.Fatal("Expected task to be invoked")
	}
	if ts.invoker.payloads[0] != `{"task":"manager"}` {
		t.Errorf("Unexpected payload %q", ts.invoker.payloads[0])
	}
}

func TestInvoke_BadPayload(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.server.URL+"/api/v1/invoke", "application/json", strings.NewReader(`{"task":`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestWebSocket_JoinDateReceivesUpdate(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(fanout.ClientMessage{Action: fanout.ActionJoinDate, Date: "2024-01-15"}); err != nil {
		t.Fatal(err)
	}

	subs := ts.hub.Subscriptions()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ids, _ := subs.DateSubscribers(context.Background(), "2024-01-15"); len(ids) == 1 && ts.hub.GetClientCount() == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	sender := fanout.NewSender(ts.hub, subs, 0, 0)
	if err := sender.NotifyDate(context.Background(), "2024-01-15"); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg fanout.DateUpdate
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Expected a date update: %v", err)
	}
	if msg.Type != "date_update" || msg.Date != "2024-01-15" {
		t.Errorf("Unexpected message %+v", msg)
	}
}
