package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gdxsv_chatops/internal/masterdata"
	"gdxsv_chatops/internal/retry"
)

var testRetry = retry.Config{
	MaxRetries: 2,
	BaseDelay:  time.Millisecond,
	MaxDelay:   5 * time.Millisecond,
	Timeout:    time.Second,
}

type recorder struct {
	mu       sync.Mutex
	messages []string
	headers  []http.Header
	status   []int
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, string(body))
	r.headers = append(r.headers, req.Header.Clone())
	if len(r.status) > 0 {
		code := r.status[0]
		r.status = r.status[1:]
		w.WriteHeader(code)
	}
}

func (r *recorder) request(i int) (string, http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[i], r.headers[i]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func TestSendNotificationDisabled(t *testing.T) {
	client := NewClient(Config{Enabled: false, BaseURL: "http://127.0.0.1:1", Topic: "ops"}, testRetry)
	if err := client.SendNotification(context.Background(), "hello"); err != nil {
		t.Errorf("Expected no error when disabled, got %v", err)
	}
}

func TestSendNotificationRetriesServerErrors(t *testing.T) {
	rec := &recorder{status: []int{http.StatusInternalServerError}}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	client := NewClient(Config{Enabled: true, BaseURL: srv.URL + "/", Topic: "gdxsv-ops", Priority: "high"}, testRetry)
	if err := client.SendNotification(context.Background(), "Updating masterdata..."); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.count() != 2 {
		t.Fatalf("Expected 2 requests, got %d", rec.count())
	}
	msg, header := rec.request(1)
	if msg != "Updating masterdata..." {
		t.Errorf("Unexpected message %q", msg)
	}
	if got := header.Get("Priority"); got != "high" {
		t.Errorf("Expected Priority header 'high', got %q", got)
	}

	sent, failed, retries := client.GetMetrics()
	if sent != 1 || failed != 0 || retries != 1 {
		t.Errorf("Expected 1/0/1, got %d/%d/%d", sent, failed, retries)
	}
}

func TestSendNotificationDoesNotRetryAuthErrors(t *testing.T) {
	rec := &recorder{status: []int{http.StatusForbidden, http.StatusForbidden}}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	client := NewClient(Config{Enabled: true, BaseURL: srv.URL, Topic: "ops"}, testRetry)
	err := client.SendNotification(context.Background(), "x")

	var notifErr *NotificationError
	if !errors.As(err, &notifErr) || notifErr.Type != "auth" {
		t.Fatalf("Expected auth NotificationError, got %v", err)
	}
	if rec.count() != 1 {
		t.Errorf("Expected 1 request, got %d", rec.count())
	}
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	rec := &recorder{status: []int{400, 400, 400, 400, 400, 400}}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	client := NewClient(Config{Enabled: true, BaseURL: srv.URL, Topic: "ops"}, testRetry)
	for i := 0; i < 5; i++ {
		client.SendNotification(context.Background(), "x")
	}

	err := client.SendNotification(context.Background(), "x")
	var notifErr *NotificationError
	if !errors.As(err, &notifErr) || notifErr.Type != "circuit_open" {
		t.Errorf("Expected circuit_open error, got %v", err)
	}
	if rec.count() != 5 {
		t.Errorf("Expected 5 requests, got %d", rec.count())
	}
}

func TestFormatReportSuccess(t *testing.T) {
	msg := FormatReport(Report{
		Tables: []masterdata.TableResult{
			{Table: "m_rule", Rows: 3},
			{Table: "m_string", Rows: 12},
		},
		Reload:   "OK",
		Duration: 1500 * time.Millisecond,
	})

	expected := "Masterdata updated: 2 tables, 15 rows in 1.5s\n" +
		"• m_rule: 3 rows\n" +
		"• m_string: 12 rows\n" +
		"reload: OK"
	if msg != expected {
		t.Errorf("Expected %q, got %q", expected, msg)
	}
}

func TestFormatReportFailure(t *testing.T) {
	msg := FormatReport(Report{Err: errors.New(`load table "m_rule": schema mismatch: no such table`)})
	if !strings.HasPrefix(msg, "Failed to update masterdata\n") {
		t.Errorf("Unexpected message %q", msg)
	}
	if !strings.Contains(msg, "schema mismatch") {
		t.Errorf("Expected error text in message, got %q", msg)
	}
}

func TestFormatReportTruncatesTables(t *testing.T) {
	var tables []masterdata.TableResult
	for i := 0; i < 12; i++ {
		tables = append(tables, masterdata.TableResult{Table: "m_t", Rows: 1})
	}
	msg := FormatReport(Report{Tables: tables})
	if !strings.Contains(msg, "... and 2 more tables") {
		t.Errorf("Expected truncation line, got %q", msg)
	}
}
