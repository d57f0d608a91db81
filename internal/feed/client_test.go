package feed_test

import (
	"bytes"
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fortuna/services/playbyplay-service/internal/feed"
	"github.com/klauspost/compress/gzip"
)

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(data)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestFetch(t *testing.T) {
	var gotUA, gotIfNoneMatch string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotIfNoneMatch = r.Header.Get("If-None-Match")

		switch r.URL.Path {
		case "/plain":
			w.Header().Set("ETag", `"v2"`)
			w.Write([]byte(`{"game":{"gameId":"1"}}`))
		case "/gzip-header":
			w.Header().Set("ETag", `"v3"`)
			w.Header().Set("Content-Encoding", "gzip")
			w.Write(gzipBytes(t, `{"ok":true}`))
		case "/gzip-magic":
			w.Write(gzipBytes(t, `{"ok":true}`))
		case "/not-modified":
			w.WriteHeader(http.StatusNotModified)
		case "/error":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("denied"))
		case "/html":
			w.Write([]byte("<html>"))
		}
	}))
	defer server.Close()

	client := feed.New(0)
	ctx := context.Background()

	tests := []struct {
		name        string
		path        string
		prior       string
		wantBody    string
		wantETag    string
		notModified bool
	}{
		{"plain body", "/plain", "", `{"game":{"gameId":"1"}}`, `"v2"`, false},
		{"gzip by header", "/gzip-header", `"v1"`, `{"ok":true}`, `"v3"`, false},
		{"gzip by magic bytes", "/gzip-magic", "", `{"ok":true}`, "", false},
		{"not modified", "/not-modified", `"v1"`, "", `"v1"`, true},
		{"error status", "/error", `"v1"`, "", `"v1"`, false},
		{"invalid json", "/html", `"v1"`, "", `"v1"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := client.Fetch(ctx, server.URL+tt.path, tt.prior, "test-agent")
			if string(res.Body) != tt.wantBody {
				t.Errorf("Expected body %q, got %q", tt.wantBody, string(res.Body))
			}
			if res.ETag != tt.wantETag {
				t.Errorf("Expected etag %q, got %q", tt.wantETag, res.ETag)
			}
			if res.NotModified != tt.notModified {
				t.Errorf("Expected NotModified=%v, got %v", tt.notModified, res.NotModified)
			}
			if res.Changed() != (tt.wantBody != "") {
				t.Errorf("Unexpected Changed()=%v", res.Changed())
			}
			if gotUA != "test-agent" {
				t.Errorf("Expected User-Agent test-agent, got %q", gotUA)
			}
			if gotIfNoneMatch != tt.prior {
				t.Errorf("Expected If-None-Match %q, got %q", tt.prior, gotIfNoneMatch)
			}
		})
	}
}

func TestFetch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	res := feed.New(0).Fetch(context.Background(), url, `"v1"`, "ua")
	if res.Changed() || res.ETag != `"v1"` {
		t.Errorf("Expected no data and prior etag, got %+v", res)
	}
}

func TestFetchJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"x"`)
		w.Write([]byte(`{"game":{"gameId":"0022300500"}}`))
	}))
	defer server.Close()

	var doc struct {
		Game struct {
			GameID string `json:"gameId"`
		} `json:"game"`
	}
	res, err := feed.New(0).FetchJSON(context.Background(), server.URL, "", "ua", &doc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !res.Changed() || doc.Game.GameID != "0022300500" {
		t.Errorf("Expected decoded game id, got %+v", doc)
	}

	var wrong []int
	if _, err := feed.New(0).FetchJSON(context.Background(), server.URL, "", "ua", &wrong); err == nil {
		t.Error("Expected decode error for mismatched type")
	}
}

func TestIdentities(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	ids := feed.Identities{"a", "b"}
	for i := 0; i < 10; i++ {
		if got := ids.Pick(rnd); got != "a" && got != "b" {
			t.Errorf("Unexpected identity %q", got)
		}
	}
	if got := feed.Identities(nil).Pick(rnd); got == "" {
		t.Error("Expected a default identity")
	}
}

func TestURLs(t *testing.T) {
	u := feed.URLs{}
	if got := u.PlayByPlayURL("0022300500"); got != "https://cdn.nba.com/static/json/liveData/playbyplay/playbyplay_0022300500.json" {
		t.Errorf("Unexpected play-by-play url %s", got)
	}
	custom := feed.URLs{Base: "http://localhost:9000/"}
	if got := custom.BoxScoreURL("1"); got != "http://localhost:9000/liveData/boxscore/boxscore_1.json" {
		t.Errorf("Unexpected box score url %s", got)
	}
	if got := custom.ScheduleURL(); got != "http://localhost:9000/staticData/scheduleLeagueV2_1.json" {
		t.Errorf("Unexpected schedule url %s", got)
	}
}
