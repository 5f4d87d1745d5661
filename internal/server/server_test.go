package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/docmux/internal/logging"
	"github.com/conneroisu/docmux/internal/prompt"
	"github.com/conneroisu/docmux/internal/routes"
	"github.com/conneroisu/docmux/internal/testutils"
)

func TestTranslateWith(t *testing.T) {
	table := routes.Table{
		{Prefix: "/a", Dir: "D1"},
		{Prefix: "/b", Dir: "D2/"},
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"first route", "/a/x", "D1/x"},
		{"bare prefix", "/b", "D2/"},
		{"trailing slash dir", "/b/page.html", "D2//page.html"},
		{"no match", "/c", "ROOT/c"},
		{"root", "/", "ROOT/"},
		{"empty", "", "ROOT"},
		{"query stripped", "/a/x?v=1", "D1/x"},
		{"root with query", "/?q=search", "ROOT/"},
		{"prefix continues name", "/ab/x", "D1/b/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TranslateWith(table, "ROOT", tt.path))
		})
	}
}

func TestTranslateWith_FirstMatchWins(t *testing.T) {
	table := routes.Table{
		{Prefix: "/docs", Dir: "/first"},
		{Prefix: "/docs/api", Dir: "/second"},
	}

	assert.Equal(t, "/first/api/x.html", TranslateWith(table, "/site", "/docs/api/x.html"))
}

type failingStore struct{}

func (failingStore) Replace(routes.Table) error       { return errors.New("read-only") }
func (failingStore) Current() (routes.Table, error) { return nil, errors.New("corrupt") }

func TestTranslator_StoreFailureFallsBackToRoot(t *testing.T) {
	tr := &Translator{Store: failingStore{}, DefaultRoot: "/site"}
	assert.Equal(t, "/site/proj1/index.html", tr.Translate("/proj1/index.html"))

	tr = &Translator{DefaultRoot: "/site"}
	assert.Equal(t, "/site/x", tr.Translate("/x"))
}

// newSite creates a home with a site dir and one built project.
func newSite(t *testing.T) (string, *routes.MemoryStore) {
	t.Helper()
	root := testutils.CreateTempHome(t)

	testutils.WriteFile(t, root, "site/index.html", "home page")
	testutils.WriteBuildPage(t, root, "foo", "page.html", "foo page")
	testutils.WriteBuildPage(t, root, "foo", "index.html", "foo index")

	table, err := routes.Build([]string{"foo"}, root, "")
	require.NoError(t, err)

	store := routes.NewMemoryStore()
	require.NoError(t, store.Replace(table))

	return root, store
}

func TestHandler(t *testing.T) {
	root, store := newSite(t)
	h := NewHandler(&Translator{Store: store, DefaultRoot: filepath.Join(root, "site")})

	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"home", http.MethodGet, "/", http.StatusOK, "home page"},
		{"project page", http.MethodGet, "/foo/page.html", http.StatusOK, "foo page"},
		{"project directory", http.MethodGet, "/foo/", http.StatusOK, "foo index"},
		{"missing", http.MethodGet, "/foo/missing.html", http.StatusNotFound, ""},
		{"unknown prefix", http.MethodGet, "/bar/page.html", http.StatusNotFound, ""},
		{"head", http.MethodHead, "/foo/page.html", http.StatusOK, ""},
		{"post rejected", http.MethodPost, "/foo/page.html", http.StatusMethodNotAllowed, ""},
		{"delete rejected", http.MethodDelete, "/", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestHandler_SeesRouteUpdates(t *testing.T) {
	root, store := newSite(t)
	h := NewHandler(&Translator{Store: store, DefaultRoot: filepath.Join(root, "site")})

	require.NoError(t, store.Replace(routes.Table{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foo/page.html", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiddleware(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	}), mw("outer"), mw("inner"), SecurityHeaders(), LoggingMiddleware(logging.Discard()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
}

// fakeListen fails for every port in busy.
type fakeListen struct {
	mu       sync.Mutex
	busy     map[int]bool
	attempts []int
}

func (f *fakeListen) listen(network, address string) (net.Listener, error) {
	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	var port int
	fmt.Sscanf(portStr, "%d", &port)

	f.mu.Lock()
	f.attempts = append(f.attempts, port)
	busy := f.busy[port]
	f.mu.Unlock()

	if busy {
		return nil, fmt.Errorf("listen tcp %s: bind: address already in use", address)
	}
	return net.Listen(network, "127.0.0.1:0")
}

func TestListen_RetriesThenMovesToNextPort(t *testing.T) {
	fake := &fakeListen{busy: map[int]bool{8443: true}}
	confirmer := &prompt.Recorder{Static: prompt.Static{Answer: true}}

	s := New(http.NotFoundHandler(), Options{
		Host:          "127.0.0.1",
		Port:          8443,
		MaxRetries:    2,
		RetryInterval: time.Millisecond,
		Confirmer:     confirmer,
	})
	s.listen = fake.listen

	ln, err := s.Listen(context.Background())
	require.NoError(t, err)
	defer ln.Close()

	assert.Equal(t, []int{8443, 8443, 8443, 8444}, fake.attempts)
	assert.Equal(t, []string{"port 8443 seems occupied. Try with 8444?"}, confirmer.Questions)
}

func TestListen_Declined(t *testing.T) {
	fake := &fakeListen{busy: map[int]bool{8443: true}}
	s := New(http.NotFoundHandler(), Options{
		Port:          8443,
		MaxRetries:    0,
		RetryInterval: time.Millisecond,
		Confirmer:     prompt.Static{Answer: false},
	})
	s.listen = fake.listen

	_, err := s.Listen(context.Background())
	assert.ErrorIs(t, err, ErrStartAborted)
	assert.Contains(t, err.Error(), "docmux serve --port")
	assert.Equal(t, []int{8443}, fake.attempts)
}

func TestListen_CancelledWhileWaiting(t *testing.T) {
	fake := &fakeListen{busy: map[int]bool{8443: true}}
	s := New(http.NotFoundHandler(), Options{
		Port:          8443,
		MaxRetries:    100,
		RetryInterval: time.Hour,
	})
	s.listen = fake.listen

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := s.Listen(ctx)
	assert.ErrorIs(t, err, ErrStartAborted)
}

type interruptedConfirmer struct{ prompt.Static }

func (interruptedConfirmer) Confirm(context.Context, string) (bool, error) {
	return false, prompt.ErrAborted
}

func TestListen_InterruptedAtQuestion(t *testing.T) {
	fake := &fakeListen{busy: map[int]bool{8443: true}}
	s := New(http.NotFoundHandler(), Options{
		Port:          8443,
		RetryInterval: time.Millisecond,
		Confirmer:     interruptedConfirmer{},
	})
	s.listen = fake.listen

	_, err := s.Listen(context.Background())
	assert.ErrorIs(t, err, ErrStartAborted)
	assert.ErrorIs(t, err, prompt.ErrAborted)
}

func TestServe_EndToEnd(t *testing.T) {
	root, store := newSite(t)
	handler := NewHandler(&Translator{Store: store, DefaultRoot: filepath.Join(root, "site")})

	s := New(handler, Options{Host: "127.0.0.1", Port: 0, MaxConnections: 4})
	ln, err := s.Listen(context.Background())
	require.NoError(t, err)
	assert.NotZero(t, s.Port())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/foo/page.html", s.Port()))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "foo page", strings.TrimSpace(string(body)))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestShutdownBeforeServe(t *testing.T) {
	s := New(http.NotFoundHandler(), Options{})
	assert.NoError(t, s.Shutdown(context.Background()))
}
