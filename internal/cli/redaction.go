package cli

import "regexp"

// Patterns scrubbed from anything printed on the terminal. Errors can carry
// request details and the browser credential must never reach a shell history.
var redactions = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]+=*`), "Bearer [REDACTED]"},
	{regexp.MustCompile(`(?i)(authorization|cookie):\s*[^\r\n]+`), "$1: [REDACTED]"},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`), "[JWT REDACTED]"},
	{regexp.MustCompile(`([?&])(token|access_token)=[^&\s]+`), "$1$2=[REDACTED]"},
	{regexp.MustCompile(`(?i)"?(password|passwd)"?\s*[:=]\s*"?[^\s",}]+"?`), "password=[REDACTED]"},
	{regexp.MustCompile(`/home/[^/\s]+`), "/home/[USER]"},
	{regexp.MustCompile(`/Users/[^/\s]+`), "/Users/[USER]"},
}

func redactSensitiveInfo(message string) string {
	for _, r := range redactions {
		message = r.pattern.ReplaceAllString(message, r.replace)
	}
	return message
}

// RedactError redacts sensitive information from error messages
func RedactError(err error) string {
	if err == nil {
		return ""
	}
	return redactSensitiveInfo(err.Error())
}
