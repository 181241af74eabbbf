package briefing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func oracleForServer(srv *httptest.Server, timeout time.Duration) *OracleClient {
	return NewOracleClient(srv.URL, "test-model", "test-key", timeout)
}

func kindOf(t *testing.T, err error) OracleErrorKind {
	t.Helper()
	var oe *OracleError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OracleError, got %v", err)
	}
	return oe.Kind
}

func TestAnalyze_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("got method %s, want POST", r.Method)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("api key missing from query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  A fast-spreading dropper.  "}]}}]}`))
	}))
	defer srv.Close()

	text, err := oracleForServer(srv, time.Second).Analyze(context.Background(), "Trojan", "dropper", "abc")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if text != "A fast-spreading dropper." {
		t.Errorf("got %q", text)
	}
}

func TestAnalyze_AuthFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := oracleForServer(srv, time.Second).Analyze(context.Background(), "Trojan", "", "abc")
	if kindOf(t, err) != OracleAuthFailed {
		t.Errorf("got kind %s, want auth_failed", kindOf(t, err))
	}
}

func TestAnalyze_ServerErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := oracleForServer(srv, time.Second).Analyze(context.Background(), "Trojan", "", "abc")
	if kindOf(t, err) != OracleUnreachable {
		t.Errorf("got kind %s, want unreachable", kindOf(t, err))
	}
}

func TestAnalyze_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"candidates":`},
		{"empty candidates", `{"candidates":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := oracleForServer(srv, time.Second).Analyze(context.Background(), "Trojan", "", "abc")
			if kindOf(t, err) != OracleMalformedResponse {
				t.Errorf("got kind %s, want malformed_response", kindOf(t, err))
			}
		})
	}
}

func TestAnalyze_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	_, err := oracleForServer(srv, 50*time.Millisecond).Analyze(context.Background(), "Trojan", "", "abc")
	if kindOf(t, err) != OracleTimeout {
		t.Errorf("got kind %s, want timeout", kindOf(t, err))
	}
}

func TestAnalyze_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	_, err := oracleForServer(srv, time.Second).Analyze(context.Background(), "Trojan", "", "abc")
	if kindOf(t, err) != OracleUnreachable {
		t.Errorf("got kind %s, want unreachable", kindOf(t, err))
	}
}
