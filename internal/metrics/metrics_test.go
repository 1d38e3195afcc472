package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MarcoPoloResearchLab/roster/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentedStoreCountsOutcomes(t *testing.T) {
	collectors := NewCollectors()
	memory, err := users.NewMemoryStore(users.MemoryStoreConfig{IDProvider: users.NewSequenceProvider("user-")})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	store := InstrumentStore(memory, collectors)

	if _, err := store.Create(context.Background(), users.Fields{Name: "A", Age: 20, Email: "a@x"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := store.List(context.Background()); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if err := store.Update(context.Background(), "missing", users.Fields{Name: "B"}); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	testCases := []struct {
		operation string
		result    string
		expected  float64
	}{
		{operation: operationCreate, result: resultSuccess, expected: 1},
		{operation: operationList, result: resultSuccess, expected: 1},
		{operation: operationUpdate, result: resultError, expected: 1},
		{operation: operationUpdate, result: resultSuccess, expected: 0},
	}
	for _, testCase := range testCases {
		got := testutil.ToFloat64(collectors.storeOperations.WithLabelValues(testCase.operation, testCase.result))
		if got != testCase.expected {
			t.Fatalf("%s/%s: expected %v, got %v", testCase.operation, testCase.result, testCase.expected, got)
		}
	}
}

func TestInstrumentStoreWithoutCollectorsReturnsStore(t *testing.T) {
	memory, err := users.NewMemoryStore(users.MemoryStoreConfig{IDProvider: users.NewUUIDProvider()})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	if InstrumentStore(memory, nil) != users.Store(memory) {
		t.Fatalf("expected the original store")
	}
}

func TestMiddlewareAndHandlerExposeRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	collectors := NewCollectors()
	collectors.ObserveNotification("record-created")

	router := gin.New()
	router.Use(collectors.Middleware())
	router.GET("/users/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	router.GET("/metrics", gin.WrapH(collectors.Handler()))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/abc", http.NoBody))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", recorder.Code)
	}

	got := testutil.ToFloat64(collectors.requests.WithLabelValues("/users/:id", http.MethodGet, "404"))
	if got != 1 {
		t.Fatalf("expected one counted request, got %v", got)
	}

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	body := recorder.Body.String()
	for _, expected := range []string{
		`roster_http_requests_total{code="404",method="GET",route="/users/:id"} 1`,
		`roster_notify_events_total{kind="record-created"} 1`,
	} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected exposition to contain %q", expected)
		}
	}
}
