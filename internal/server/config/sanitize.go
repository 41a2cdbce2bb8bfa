package config

import (
	"net/url"
	"regexp"
	"strings"
)

// Sanitize returns a copy of the config with secrets masked, for logging.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Sessions.Redis.Password != "" {
		sanitized.Sessions.Redis.Password = maskSecret(sanitized.Sessions.Redis.Password)
	}
	sanitized.Storage.DSN = maskDSN(sanitized.Storage.DSN)

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

var dsnPasswordRe = regexp.MustCompile(`(?i)(password=)('[^']*'|\S+)`)

// maskDSN hides the password of a URL or key=value connection string.
func maskDSN(dsn string) string {
	if strings.Contains(dsn, "://") {
		if u, err := url.Parse(dsn); err == nil {
			return u.Redacted()
		}
	}
	return dsnPasswordRe.ReplaceAllString(dsn, "${1}xxxxx")
}
