// Package security provides secret masking for jcommit's logs and output.
package security

import (
	"net/url"
	"regexp"
	"strings"
)

// MaskAPIKey masks an API key, showing only the last 4 characters.
// This should be used when logging or displaying API keys.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

var sanitizePatterns = []struct {
	regex       *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`), "sk-****"},
	{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`), "Bearer ****"},
	// Query-string keys used by some gateways, e.g. ?api-key=... or &key=...
	{regexp.MustCompile(`(?i)([?&](?:api[_-]?key|key|token)=)[^&\s]+`), "${1}****"},
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|secret[_-]?key)\s*[:=]\s*["']?[a-zA-Z0-9._-]+["']?`), "$1=****"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?[^\s"']+["']?`), "$1=****"},
}

// SanitizeForLogging sanitizes a string for safe logging by masking potential secrets.
// It looks for common patterns like API keys, passwords, and tokens.
func SanitizeForLogging(s string) string {
	result := s
	for _, p := range sanitizePatterns {
		result = p.regex.ReplaceAllString(result, p.replacement)
	}
	return result
}

// keyedHosts are hosted APIs that reject requests without a key.
var keyedHosts = []string{
	"api.openai.com",
	".openai.azure.com",
}

// RequiresAPIKey reports whether endpoint points at a hosted API known to
// require authentication. Self-hosted and local endpoints return false.
func RequiresAPIKey(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range keyedHosts {
		if host == strings.TrimPrefix(h, ".") || (strings.HasPrefix(h, ".") && strings.HasSuffix(host, h)) {
			return true
		}
	}
	return false
}

// DiffNotice reminds the user that the diff leaves the machine.
const DiffNotice = "Your diff is sent to the configured completion endpoint. Do not stage secrets."
