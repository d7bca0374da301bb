package googletasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	tasks "google.golang.org/api/tasks/v1"

	"taskman/internal/backend/googletasks"
	"taskman/internal/service"
)

// fakeTasksAPI serves the subset of the Tasks API the client uses.
type fakeTasksAPI struct {
	mu     sync.Mutex
	items  []*tasks.Task
	nextID int
	lists  []string // list ids seen in requests
}

func (f *fakeTasksAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/v1/lists/{list}/tasks", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lists = append(f.lists, r.PathValue("list"))
		if r.URL.Query().Get("showCompleted") != "true" || r.URL.Query().Get("showHidden") != "true" {
			http.Error(w, `{"error":{"code":400,"message":"completed tasks must be requested"}}`, http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(&tasks.Tasks{Items: f.items})
	})
	mux.HandleFunc("POST /tasks/v1/lists/{list}/tasks", func(w http.ResponseWriter, r *http.Request) {
		var item tasks.Task
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextID++
		item.Id = "g" + strconv.Itoa(f.nextID)
		f.items = append(f.items, &item)
		json.NewEncoder(w).Encode(&item)
	})
	mux.HandleFunc("PUT /tasks/v1/lists/{list}/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		var item tasks.Task
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, existing := range f.items {
			if existing.Id == r.PathValue("id") {
				f.items[i] = &item
				json.NewEncoder(w).Encode(&item)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"message":"Task not found"}}`))
	})
	mux.HandleFunc("DELETE /tasks/v1/lists/{list}/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, existing := range f.items {
			if existing.Id == r.PathValue("id") {
				f.items = append(f.items[:i], f.items[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"message":"Task not found"}}`))
	})
	return mux
}

func newClient(t *testing.T, h http.Handler) *googletasks.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	client, err := googletasks.NewWithHTTPClient(context.Background(), ts.Client(), ts.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	api := &fakeTasksAPI{}
	client := newClient(t, api.handler())

	if err := client.Create(ctx, "X", "Y"); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := client.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 task, got %d", len(got))
	}
	want := service.Task{ID: "g1", Title: "X", Description: "Y", Completed: false}
	if got[0] != want {
		t.Errorf("expected %+v, got %+v", want, got[0])
	}

	want.Completed = true
	if err := client.Update(ctx, want); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = client.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !got[0].Completed {
		t.Error("expected task completed")
	}

	if err := client.Delete(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = client.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %+v", got)
	}

	for _, list := range api.lists {
		if list != googletasks.DefaultListID {
			t.Errorf("expected default list, got %q", list)
		}
	}
}

func TestClient_NotFound(t *testing.T) {
	ctx := context.Background()
	client := newClient(t, (&fakeTasksAPI{}).handler())

	if err := client.Update(ctx, service.Task{ID: "missing", Title: "x"}); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("update: expected ErrNotFound, got %v", err)
	}
	if err := client.Delete(ctx, "missing"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestClient_Unauthorized(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":401,"message":"Invalid Credentials"}}`))
	}))

	_, err := client.List(context.Background())
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_AccountsUnsupported(t *testing.T) {
	ctx := context.Background()
	client := newClient(t, (&fakeTasksAPI{}).handler())

	if err := client.Register(ctx, service.Credentials{Username: "a", Password: "b"}); !errors.Is(err, service.ErrUnsupported) {
		t.Errorf("register: expected ErrUnsupported, got %v", err)
	}
	if _, err := client.Login(ctx, service.Credentials{}); !errors.Is(err, service.ErrUnsupported) {
		t.Errorf("login without oauth client: expected ErrUnsupported, got %v", err)
	}
}
