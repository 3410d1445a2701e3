package econet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/muurk/econet/internal/memcache"
)

const (
	testUser     = "admin"
	testPassword = "secret"
)

// fakeController serves canned registry payloads and records requests
type fakeController struct {
	mu        sync.Mutex
	responses map[string][]string // path -> bodies served in order, last repeats
	status    map[string]int
	hits      map[string]int
	queries   []url.Values
}

func newFakeController() *fakeController {
	return &fakeController{
		responses: make(map[string][]string),
		status:    make(map[string]int),
		hits:      make(map[string]int),
	}
}

func (f *fakeController) respond(path string, bodies ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = bodies
}

func (f *fakeController) respondStatus(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[path] = status
	f.responses[path] = []string{body}
}

func (f *fakeController) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeController) recordedQueries() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.queries...)
}

func (f *fakeController) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.hits {
		n += v
	}
	return n
}

func (f *fakeController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != testUser || pass != testPassword {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	f.mu.Lock()
	path := r.URL.Path
	n := f.hits[path]
	f.hits[path] = n + 1
	f.queries = append(f.queries, r.URL.Query())
	bodies := f.responses[path]
	status := f.status[path]
	f.mu.Unlock()

	if len(bodies) == 0 {
		http.NotFound(w, r)
		return
	}
	if n >= len(bodies) {
		n = len(bodies) - 1
	}
	if status != 0 {
		w.WriteHeader(status)
	}
	_, _ = w.Write([]byte(bodies[n]))
}

// start launches the fake controller and returns a fast-failing client for it
func (f *fakeController) start(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, testUser, testPassword, srv.Client())
	client.SetTimeout(500 * time.Millisecond)
	client.SetRetry(DefaultMaxAttempts, time.Millisecond)
	return client
}

// startAPI launches the fake controller and returns an uninitialized facade
func (f *fakeController) startAPI(t *testing.T, opts ...Option) (*API, *memcache.MemCache) {
	t.Helper()
	cache := memcache.New()
	return NewAPI(f.start(t), cache, opts...), cache
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	return string(data)
}

const (
	sysParamsBody  = `{"uid":"2L7SDPN6KQ38CIH2401K01U","softVer":"1.1.80.22","routerType":"ecoNET300 v2","controllerID":"ecoMAX 810P-L","a":2,"b":3}`
	regParamsBody  = `{"currUnits":1,"curr":{"tempCO":45.5,"a":1,"mode":"heating"}}`
	editParamsBody = `{"data":{"1280":{"value":50,"minv":27,"maxv":68},"1281":{"value":45,"minv":20,"maxv":55},"a":{"value":4,"minv":0,"maxv":10}}}`
)
