// Package shared provides common utility functions used across multiple
// packages in the gitlab-devtools codebase.
package shared

import (
	"fmt"
	"strings"
)

// NormalizePackageName lowercases a Python package name and replaces
// underscores and dots with hyphens, following PEP 503 normalization. Pin
// table keys and manifest dependency names are compared in this form.
func NormalizePackageName(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	replacer := strings.NewReplacer("_", "-", ".", "-")
	return replacer.Replace(lower)
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, strings.TrimSpace(body))
}
