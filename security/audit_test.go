package security

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewAuditor(t *testing.T) {
	tests := []struct {
		name    string
		logger  *slog.Logger
		enabled bool
	}{
		{
			name:    "enabled with logger",
			logger:  slog.Default(),
			enabled: true,
		},
		{
			name:    "disabled with logger",
			logger:  slog.Default(),
			enabled: false,
		},
		{
			name:    "enabled with nil logger",
			logger:  nil,
			enabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditor := NewAuditor(tt.logger, tt.enabled)
			if auditor == nil {
				t.Fatal("NewAuditor() returned nil")
			}
			if auditor.enabled != tt.enabled {
				t.Errorf("enabled = %v, want %v", auditor.enabled, tt.enabled)
			}
			if auditor.logger == nil {
				t.Error("logger should not be nil")
			}
		})
	}
}

func TestAuditor_LogEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	tests := []struct {
		name    string
		enabled bool
		event   Event
		wantLog bool
	}{
		{
			name:    "enabled",
			enabled: true,
			event: Event{
				Type:      "test_event",
				UserID:    "user-123",
				ClientID:  "client-456",
				IPAddress: "192.168.1.1",
				Details:   map[string]any{"key": "value"},
			},
			wantLog: true,
		},
		{
			name:    "disabled",
			enabled: false,
			event: Event{
				Type:      "test_event",
				UserID:    "user-123",
				ClientID:  "client-456",
				IPAddress: "192.168.1.1",
			},
			wantLog: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			auditor := NewAuditor(logger, tt.enabled)

			auditor.LogEvent(tt.event)

			hasLog := buf.Len() > 0
			if hasLog != tt.wantLog {
				t.Errorf("LogEvent() logged = %v, want %v", hasLog, tt.wantLog)
			}

			if tt.wantLog {
				logOutput := buf.String()
				if len(logOutput) == 0 {
					t.Error("LogEvent() should have produced log output")
				}
			}
		})
	}
}

func TestAuditor_Helpers(t *testing.T) {
	tests := []struct {
		name      string
		log       func(a *Auditor)
		eventType string
		contains  []string
	}{
		{
			name:      "token issued",
			log:       func(a *Auditor) { a.LogTokenIssued("user-123", "client-456", "password", "read write") },
			eventType: EventTokenIssued,
			contains:  []string{"client-456", "grant_type:password"},
		},
		{
			name:      "token refreshed",
			log:       func(a *Auditor) { a.LogTokenRefreshed("user-123", "client-456") },
			eventType: EventTokenRefreshed,
			contains:  []string{"rotated:true"},
		},
		{
			name:      "code consumed",
			log:       func(a *Auditor) { a.LogCodeConsumed("user-123", "client-456") },
			eventType: EventAuthorizationCodeConsumed,
		},
		{
			name:      "token revoked",
			log:       func(a *Auditor) { a.LogTokenRevoked("client-456", "192.168.1.1", "refresh_token") },
			eventType: EventTokenRevoked,
			contains:  []string{"192.168.1.1", "refresh_token"},
		},
		{
			name:      "auth failure",
			log:       func(a *Auditor) { a.LogAuthFailure("user-123", "client-456", "192.168.1.1", "invalid credentials") },
			eventType: EventAuthFailure,
			contains:  []string{"invalid credentials"},
		},
		{
			name:      "grant rejected",
			log:       func(a *Auditor) { a.LogGrantRejected("client-456", "refresh_token", "invalid_grant", "expired") },
			eventType: EventGrantRejected,
			contains:  []string{"invalid_grant"},
		},
		{
			name:      "scope denied",
			log:       func(a *Auditor) { a.LogScopeDenied("user-123", "client-456", "admin") },
			eventType: EventScopeDenied,
			contains:  []string{"required_scope:admin"},
		},
		{
			name:      "rate limit exceeded",
			log:       func(a *Auditor) { a.LogRateLimitExceeded("192.168.1.1", "client-456") },
			eventType: EventRateLimitExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			auditor := NewAuditor(slog.New(slog.NewTextHandler(&buf, nil)), true)

			tt.log(auditor)

			out := buf.String()
			if !strings.Contains(out, "event_type="+tt.eventType) {
				t.Errorf("log output %q missing event_type=%s", out, tt.eventType)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("log output %q missing %q", out, want)
				}
			}
			if strings.Contains(out, "user-123") {
				t.Error("user id should be hashed, not logged verbatim")
			}
		})
	}
}

func TestAuditor_NilIsNoop(t *testing.T) {
	var a *Auditor
	a.LogTokenIssued("u", "c", "password", "")
}

func Test_hashForLogging(t *testing.T) {
	tests := []struct {
		name      string
		sensitive string
		want      string
	}{
		{
			name:      "empty string",
			sensitive: "",
			want:      "<empty>",
		},
		{
			name:      "non-empty string",
			sensitive: "sensitive-data",
			want:      "", // We just verify it's not empty and not the original
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hashForLogging(tt.sensitive)
			if tt.sensitive == "" {
				if got != tt.want {
					t.Errorf("hashForLogging() = %q, want %q", got, tt.want)
				}
			} else {
				// Should not be empty and should not be the original
				if got == "" {
					t.Error("hashForLogging() returned empty string for non-empty input")
				}
				if got == tt.sensitive {
					t.Error("hashForLogging() returned unhashed sensitive data")
				}
				// Should be 16 characters (truncated hash)
				if len(got) != 16 {
					t.Errorf("hashForLogging() returned hash of length %d, want 16", len(got))
				}
			}
		})
	}
}

func Test_hashForLogging_Deterministic(t *testing.T) {
	input := "test-data"
	hash1 := hashForLogging(input)
	hash2 := hashForLogging(input)

	if hash1 != hash2 {
		t.Error("hashForLogging() should return same hash for same input")
	}
}

func Test_hashForLogging_Different(t *testing.T) {
	hash1 := hashForLogging("data1")
	hash2 := hashForLogging("data2")

	if hash1 == hash2 {
		t.Error("hashForLogging() should return different hashes for different inputs")
	}
}
