package logger

import (
	"log/slog"
	"testing"
)

func TestRedactSensitive_TokenValue(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	// Masked under any key, not only sensitive ones.
	l.Info("login", "value", "tkst_ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopq")

	if got := decode(t, buf)["value"]; got != "tkst_ABC...opq" {
		t.Errorf("value = %v, want tkst_ABC...opq", got)
	}
}

func TestRedactSensitive_SensitiveKeyName(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	for _, key := range []string{"password", "new_password", "X-SessionId", "password_digest", "client_secret"} {
		t.Run(key, func(t *testing.T) {
			buf.Reset()
			l.Info("test", key, "something")
			if got := decode(t, buf)[key]; got != redactedValue {
				t.Errorf("%s = %v, want redacted", key, got)
			}
		})
	}
}

func TestRedactSensitive_NormalValues(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	l.Info("test", "username", "alice", "timer_id", "tktm-01arz3ndektsv4rrffq69g5fav", "password", "")

	entry := decode(t, buf)
	if entry["username"] != "alice" {
		t.Errorf("username = %v", entry["username"])
	}
	if entry["timer_id"] != "tktm-01arz3ndektsv4rrffq69g5fav" {
		t.Errorf("timer_id = %v", entry["timer_id"])
	}
	if entry["password"] != "" {
		t.Errorf("empty password should stay empty, got %v", entry["password"])
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	a := redactSensitive(slog.Group("req", slog.String("token", "abc"), slog.String("path", "/login")))

	attrs := a.Value.Group()
	if attrs[0].Value.String() != redactedValue {
		t.Errorf("nested token = %q", attrs[0].Value.String())
	}
	if attrs[1].Value.String() != "/login" {
		t.Errorf("nested path = %q", attrs[1].Value.String())
	}
}

func TestRedactString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"tkst_ABCDEFGHIJKLMNOP", "tkst_ABC...NOP"},
		{"tkst_abc", "tkst_***"},
		{"tkth_0123456789abcdef", "tkth_012...def"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := RedactString(tt.in); got != tt.want {
			t.Errorf("RedactString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSensitiveKey(t *testing.T) {
	if !IsSensitiveKey("Auth_Token") {
		t.Error("Auth_Token should be sensitive")
	}
	if IsSensitiveKey("session_store") {
		t.Error("session_store should not be sensitive")
	}
}
