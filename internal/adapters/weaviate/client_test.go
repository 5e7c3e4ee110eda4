package weaviate_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tripextract/internal/adapters/weaviate"
	"tripextract/internal/domain"
)

func newClient(t *testing.T, url string) *weaviate.Client {
	t.Helper()
	cl, err := weaviate.New(weaviate.Options{BaseURL: url, APIKey: "wv-key", OpenAIKey: "oa-key", RPS: 100}) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestClient_InsertObjects_RetriesThenSuccess(t *testing.T) {
	var hits int32
	var got struct {
		Objects []struct {
			Class      string         `json:"class"`
			ID         string         `json:"id"`
			Properties map[string]any `json:"properties"`
		} `json:"objects"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/batch/objects" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer wv-key" || r.Header.Get("X-OpenAI-Api-Key") != "oa-key" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			// one transient failure
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"x","result":{}}]`))
		}
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := cl.InsertObjects(ctx, "activity_Bridge", []domain.VectorObject{
		{ID: "x", Properties: map[string]any{"activity_id": "A0001"}},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if atomic.LoadInt32(&hits) < 2 {
		t.Fatalf("expected a retry, got %d calls", hits)
	}
	if len(got.Objects) != 1 || got.Objects[0].Class != "Activity_Bridge" || got.Objects[0].Properties["activity_id"] != "A0001" {
		t.Fatalf("unexpected batch body: %+v", got)
	}
}

func TestClient_InsertObjects_ReportsRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a","result":{}},{"id":"b","result":{"errors":{"error":[{"message":"bad vector"}]}}}]`))
	}))
	defer ts.Close()

	err := newClient(t, ts.URL).InsertObjects(context.Background(), "x", []domain.VectorObject{{ID: "a"}, {ID: "b"}})
	if err == nil || !strings.Contains(err.Error(), "bad vector") {
		t.Fatalf("expected rejected object error, got %v", err)
	}
}

func TestClient_SchemaCalls(t *testing.T) {
	var created map[string]any
	var deleted string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/schema":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"classes":[{"class":"Activity_Embedded"},{"class":"Activity_Bridge"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/v1/schema":
			_ = json.NewDecoder(r.Body).Decode(&created)
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/schema/Missing":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodDelete:
			deleted = strings.TrimPrefix(r.URL.Path, "/v1/schema/")
		case r.URL.Path == "/v1/.well-known/ready":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL)
	ctx := context.Background()

	if err := cl.Ready(ctx); err != nil {
		t.Fatalf("ready: %v", err)
	}
	names, err := cl.ListCollections(ctx)
	if err != nil || len(names) != 2 || names[0] != "Activity_Embedded" {
		t.Fatalf("list: %v %v", names, err)
	}
	if err := cl.CreateCollection(ctx, "foodAndDrink_Embedded"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if created["class"] != "FoodAndDrink_Embedded" || created["vectorizer"] != "text2vec-openai" {
		t.Fatalf("unexpected class body: %+v", created)
	}
	mc, _ := created["moduleConfig"].(map[string]any)
	if _, ok := mc["generative-openai"]; !ok {
		t.Fatalf("generative module missing: %+v", created)
	}
	if err := cl.DeleteCollection(ctx, "activity_Bridge"); err != nil || deleted != "Activity_Bridge" {
		t.Fatalf("delete: %q %v", deleted, err)
	}
	if err := cl.DeleteCollection(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := weaviate.New(weaviate.Options{}); err == nil {
		t.Fatalf("expected error")
	}
}
