package restsvc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
	restsvc "github.com/trezcool/darasa/services/rest"
	inmemks "github.com/trezcool/darasa/storage/keyval/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

func newClient(t *testing.T, srvURL string, keys core.Keystore, timeout time.Duration) *restsvc.Client {
	t.Helper()
	conf := &core.Config{API: core.APIConfig{BaseURL: srvURL, Timeout: timeout}}
	client, err := restsvc.NewClient(conf, keys, testutil.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	return client
}

func TestClient_envelopeDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/enveloped":
			w.Write([]byte(`{"data":{"id":"a","name":"One"}}`))
		case "/bare":
			w.Write([]byte(`{"id":"b","name":"Two"}`))
		case "/paged":
			w.Write([]byte(`{"data":{"data":[{"id":"a"},{"id":"b"}],"pagination":{"page":2,"limit":2,"total":10,"pages":5}}}`))
		}
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, inmemks.New(), time.Second)
	ctx := context.Background()

	var rec struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := client.Get(ctx, "/enveloped", nil, &rec); err != nil {
		t.Fatalf("Get(/enveloped) failed: %v", err)
	}
	if rec.ID != "a" || rec.Name != "One" {
		t.Errorf("Get(/enveloped) = %+v, want {a One}", rec)
	}

	// payloads without a data envelope decode as-is
	if err := client.Get(ctx, "/bare", nil, &rec); err != nil {
		t.Fatalf("Get(/bare) failed: %v", err)
	}
	if rec.ID != "b" {
		t.Errorf("Get(/bare).ID = %q, want b", rec.ID)
	}

	var list []struct {
		ID string `json:"id"`
	}
	page, err := client.GetPage(ctx, "/paged", nil, &list)
	if err != nil {
		t.Fatalf("GetPage(/paged) failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("GetPage(/paged) len = %d, want 2", len(list))
	}
	if want := (core.Page{Page: 2, Limit: 2, Total: 10, Pages: 5}); page != want {
		t.Errorf("GetPage(/paged) pagination = %+v, want %+v", page, want)
	}
}

func TestClient_rejections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/structured":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"name already taken"}`))
		case "/unstructured":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`<html>boom</html>`))
		case "/unauthorized":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"invalid or expired token"}`))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"data":null}`))
		}
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, inmemks.New(), 50*time.Millisecond)
	ctx := context.Background()

	tests := []struct {
		name         string
		path         string
		wantMsg      string
		unauthorized bool
		timeout      bool
	}{
		{name: "structured rejection", path: "/structured", wantMsg: "name already taken"},
		{name: "unstructured rejection", path: "/unstructured", wantMsg: "Internal Server Error"},
		{name: "unauthorized", path: "/unauthorized", wantMsg: "invalid or expired token", unauthorized: true},
		{name: "timeout", path: "/slow", wantMsg: "request timed out", timeout: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Get(ctx, tt.path, nil, nil)
			if err == nil {
				t.Fatal("Get() error = nil, want rejection")
			}
			if got := err.Error(); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
			if got := core.IsUnauthorized(err); got != tt.unauthorized {
				t.Errorf("IsUnauthorized() = %t, want %t", got, tt.unauthorized)
			}
			if got := core.IsTimeout(err); got != tt.timeout {
				t.Errorf("IsTimeout() = %t, want %t", got, tt.timeout)
			}
		})
	}
}

func TestClient_transportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listens anymore

	client := newClient(t, srv.URL, inmemks.New(), time.Second)
	err := client.Get(context.Background(), "/", nil, nil)
	if err == nil {
		t.Fatal("Get() error = nil, want transport rejection")
	}
	if err.Error() == "" {
		t.Error("transport rejection carries no message")
	}
	if core.IsTimeout(err) || core.IsUnauthorized(err) {
		t.Error("transport rejection misclassified")
	}
}

// The credential must be read from the keystore at call time, so a token
// stored after the client was built is picked up on the very next call.
func TestClient_credentialReadAtCallTime(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":null}`))
	}))
	defer srv.Close()

	keys := inmemks.New()
	client := newClient(t, srv.URL, keys, time.Second)
	ctx := context.Background()

	if err := client.Get(ctx, "/", nil, nil); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q before login, want empty", gotAuth)
	}

	if err := keys.Set(core.KeyAccessToken, "tok-123"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := client.Get(ctx, "/", nil, nil); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if want := "Bearer tok-123"; gotAuth != want {
		t.Errorf("Authorization = %q, want %q", gotAuth, want)
	}
}
