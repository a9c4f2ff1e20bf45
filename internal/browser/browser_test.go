package browser

import (
	"strings"
	"testing"
)

func TestOpenRejectsNonHTTP(t *testing.T) {
	tests := []string{
		"file:///etc/passwd",
		"javascript:alert(1)",
		"ftp://example.com/file",
	}
	for _, url := range tests {
		err := Open(url)
		if err == nil {
			t.Errorf("Open(%q): expected error for non-http scheme", url)
			continue
		}
		if !strings.Contains(err.Error(), "refusing") && !strings.Contains(err.Error(), "invalid") {
			t.Errorf("Open(%q): unexpected error: %v", url, err)
		}
	}
}

func TestOpenRejectsInvalidURL(t *testing.T) {
	if err := Open("://not a url"); err == nil {
		t.Error("expected error for malformed URL")
	}
}
