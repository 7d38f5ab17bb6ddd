package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-datespan/internal/config"
	"github.com/tartampluch/go-datespan/internal/engine"
)

var refNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestServer() *Server {
	return NewServer("0", engine.NewCalculator(engine.FixedClock(refNow)))
}

// do runs a request through the full router, middleware included.
func do(t *testing.T, srv *Server, method, target string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, sonic.Unmarshal(body, &out), "body: %s", body)
	return out
}

// -----------------------------------------------------------------------------
// Calculation endpoints
// -----------------------------------------------------------------------------

func TestHandler_Age(t *testing.T) {
	resp := do(t, newTestServer(), http.MethodGet, "/api/age?day=20&month=3&year=1990", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))

	got := decodeBody[SpanResponse](t, resp)
	assert.Equal(t, SpanResponse{
		Years: 33, Months: 11, Days: 24,
		Direction: config.DirectionPast,
		Reference: "1990-03-20",
		Today:     "2024-03-15",
	}, got)
}

func TestHandler_Until(t *testing.T) {
	resp := do(t, newTestServer(), http.MethodGet, "/api/until?day=1&month=1&year=2025", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[SpanResponse](t, resp)
	assert.Equal(t, 0, got.Years)
	assert.Equal(t, 9, got.Months)
	assert.Equal(t, 17, got.Days)
	assert.Equal(t, config.DirectionFuture, got.Direction)
}

func TestHandler_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   map[string]engine.Code
	}{
		{
			name:   "Missing fields",
			target: "/api/age",
			want: map[string]engine.Code{
				config.FieldDay:   engine.CodeMissingField,
				config.FieldMonth: engine.CodeMissingField,
				config.FieldYear:  engine.CodeMissingField,
			},
		},
		{
			name:   "Out of range",
			target: "/api/age?day=32&month=13&year=abc",
			want: map[string]engine.Code{
				config.FieldDay:   engine.CodeOutOfRange,
				config.FieldMonth: engine.CodeOutOfRange,
				config.FieldYear:  engine.CodeOutOfRange,
			},
		},
		{
			name:   "Impossible date",
			target: "/api/age?day=31&month=4&year=2020",
			want: map[string]engine.Code{
				config.FieldDay:   engine.CodeImpossibleDate,
				config.FieldMonth: engine.CodeImpossibleDate,
				config.FieldYear:  engine.CodeImpossibleDate,
			},
		},
		{
			name:   "Birth date in the future",
			target: "/api/age?day=16&month=3&year=2024",
			want:   map[string]engine.Code{config.FieldYear: engine.CodeDirectionViolation},
		},
		{
			name:   "Event in the past",
			target: "/api/until?day=14&month=3&year=2024",
			want:   map[string]engine.Code{config.FieldYear: engine.CodeDirectionViolation},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, newTestServer(), http.MethodGet, tt.target, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			got := decodeBody[ErrorResponse](t, resp)
			require.Len(t, got.Errors, len(tt.want))
			for _, e := range got.Errors {
				assert.Equal(t, tt.want[e.Field], e.Code, "field %s", e.Field)
				assert.NotEmpty(t, e.Message)
			}
		})
	}
}

func TestHandler_Today_BothDirections(t *testing.T) {
	srv := newTestServer()
	for _, route := range []string{config.RouteAge, config.RouteUntil} {
		resp := do(t, srv, http.MethodGet, route+"?day=15&month=3&year=2024", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, route)
		got := decodeBody[SpanResponse](t, resp)
		assert.Zero(t, got.Years+got.Months+got.Days, route)
	}
}

func TestHandler_UnknownQueryKeysIgnored(t *testing.T) {
	resp := do(t, newTestServer(), http.MethodGet, "/api/age?day=1&month=1&year=2000&utm_source=x", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	resp := do(t, newTestServer(), http.MethodPost, "/api/age?day=1&month=1&year=2000", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// -----------------------------------------------------------------------------
// Calendar export
// -----------------------------------------------------------------------------

func TestHandler_UntilICS(t *testing.T) {
	srv := newTestServer()
	resp := do(t, srv, http.MethodGet, "/api/until.ics?day=1&month=1&year=2025&summary=New+Year", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderContentDisposition), "event-2025-01-01.ics")

	etag := resp.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	cal, err := ical.NewDecoder(resp.Body).Decode()
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)
	summary, err := events[0].Props.Text(config.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "New Year", summary)

	// Same day, same event: the client cache stays valid.
	again := do(t, srv, http.MethodGet, "/api/until.ics?day=1&month=1&year=2025&summary=New+Year",
		map[string]string{config.HeaderIfNoneMatch: etag})
	assert.Equal(t, http.StatusNotModified, again.StatusCode)
	body, _ := io.ReadAll(again.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")
}

func TestHandler_UntilICS_RejectsPast(t *testing.T) {
	resp := do(t, newTestServer(), http.MethodGet, "/api/until.ics?day=1&month=1&year=2000", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

// -----------------------------------------------------------------------------
// Contacts cache
// -----------------------------------------------------------------------------

func TestHandler_Contacts_Initializing(t *testing.T) {
	resp := do(t, newTestServer(), http.MethodGet, config.RouteContacts, nil)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

func TestHandler_Contacts_Caching(t *testing.T) {
	srv := newTestServer()
	require.NoError(t, srv.PublishContacts([]engine.ContactAge{{
		UID:       "abc",
		Name:      "Ada",
		YearKnown: true,
		Age:       engine.Difference{Years: 36},
	}}))

	resp := do(t, srv, http.MethodGet, config.RouteContacts, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderLastModified))

	got := decodeBody[[]engine.ContactAge](t, resp)
	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].Name)
	assert.Equal(t, 36, got[0].Age.Years)

	etag := resp.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag, "Server must provide an ETag")

	again := do(t, srv, http.MethodGet, config.RouteContacts, map[string]string{config.HeaderIfNoneMatch: etag})
	assert.Equal(t, http.StatusNotModified, again.StatusCode)
}

func TestHandler_Contacts_IfNoneMatchForms(t *testing.T) {
	srv := newTestServer()
	require.NoError(t, srv.PublishContacts([]engine.ContactAge{{UID: "abc", Name: "Ada"}}))

	etag := do(t, srv, http.MethodGet, config.RouteContacts, nil).Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"Exact", etag, http.StatusNotModified},
		{"In a list", `"stale", ` + etag, http.StatusNotModified},
		{"Weak", "W/" + etag, http.StatusNotModified},
		{"Wildcard", "*", http.StatusNotModified},
		{"Other tag", `"stale"`, http.StatusOK},
		{"Empty list items", " , ", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, http.MethodGet, config.RouteContacts, map[string]string{config.HeaderIfNoneMatch: tt.header})
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestHandler_Contacts_EmptyReport(t *testing.T) {
	srv := newTestServer()
	require.NoError(t, srv.PublishContacts(nil))

	resp := do(t, srv, http.MethodGet, config.RouteContacts, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", string(body))
}

// -----------------------------------------------------------------------------
// Ambient routes & middleware
// -----------------------------------------------------------------------------

func TestHandler_Health(t *testing.T) {
	srv := newTestServer()
	resp := do(t, srv, http.MethodGet, config.RouteHealth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[HealthResponse](t, resp)
	assert.Equal(t, config.HTTPMsgOK, got.Status)
	assert.False(t, got.Contacts)
}

func TestHandler_Metrics(t *testing.T) {
	srv := newTestServer()
	do(t, srv, http.MethodGet, "/api/age?day=1&month=1&year=2000", nil)
	do(t, srv, http.MethodGet, "/api/age?day=31&month=2&year=2000", nil)

	resp := do(t, srv, http.MethodGet, config.RouteMetrics, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), config.MetricCalculations)
	assert.Contains(t, string(body), config.MetricRejections)
	assert.Contains(t, string(body), `code="impossible_date"`)
}

func TestMiddleware_RequestID(t *testing.T) {
	srv := newTestServer()

	resp := do(t, srv, http.MethodGet, config.RouteHealth, nil)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderRequestID))

	resp = do(t, srv, http.MethodGet, config.RouteHealth, map[string]string{config.HeaderRequestID: "trace-42"})
	assert.Equal(t, "trace-42", resp.Header.Get(config.HeaderRequestID))
}

func TestMiddleware_Recovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition runs writers and readers of the contacts cache
// concurrently. Run this with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := newTestServer()
	var wg sync.WaitGroup
	end := time.Now().Add(300 * time.Millisecond)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				_ = srv.PublishContacts([]engine.ContactAge{{Name: fmt.Sprintf("c-%d-%d", id, i)}})
				time.Sleep(time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 16; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteContacts, nil))
				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", w.Code)
				}
			}
		}()
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

// TestServer_Lifecycle binds a real listener and checks graceful shutdown.
func TestServer_Lifecycle(t *testing.T) {
	const port = "18098"

	srv := NewServer(port, engine.NewCalculator(engine.RealClock{}))
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	url := "http://127.0.0.1:" + port + config.RouteHealth
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestServer_Start_NoPort(t *testing.T) {
	srv := NewServer("", engine.NewCalculator(engine.RealClock{}))
	err := srv.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRequired)
}
