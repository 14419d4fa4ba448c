package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderObservations(t *testing.T) {
	r := NewRecorder()
	now := time.Unix(1700000000, 0)

	r.ObserveTable("m_string", 12)
	r.ObserveTable("m_rule", 3)
	r.ObserveSuccess(2, 1500*time.Millisecond, now)
	r.ObserveFailure(StageReload, time.Second)

	if got := testutil.ToFloat64(r.rowsLoaded.WithLabelValues("m_string")); got != 12 {
		t.Errorf("Expected 12 rows, got %v", got)
	}
	if got := testutil.ToFloat64(r.tables); got != 2 {
		t.Errorf("Expected 2 tables, got %v", got)
	}
	if got := testutil.ToFloat64(r.lastSuccess); got != 1700000000 {
		t.Errorf("Expected last success timestamp, got %v", got)
	}
	if got := testutil.ToFloat64(r.failures.WithLabelValues(StageReload)); got != 1 {
		t.Errorf("Expected 1 reload failure, got %v", got)
	}
	if got := testutil.ToFloat64(r.duration); got != 1 {
		t.Errorf("Expected duration 1s, got %v", got)
	}
}

func TestPush(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		mu.Lock()
		method, path, body = req.Method, req.URL.Path, string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRecorder()
	r.ObserveTable("m_string", 1)
	if err := r.Push(srv.URL); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if method != http.MethodPut {
		t.Errorf("Expected PUT, got %s", method)
	}
	if path != "/metrics/job/"+Job {
		t.Errorf("Expected job path, got %s", path)
	}
	if !strings.Contains(body, "gdxsv_masterdata_rows") {
		t.Errorf("Expected pushed body to carry gdxsv_masterdata_rows")
	}
}

func TestPushDisabled(t *testing.T) {
	if err := NewRecorder().Push(""); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
