package utils

import (
	"strings"
	"testing"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := RenderMarkdown("**bold** <script>alert(1)</script>")
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("Expected bold markup, got %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("script tag must be stripped, got %q", out)
	}
}

func TestRenderMarkdownImages(t *testing.T) {
	out := RenderMarkdown("![cat](https://example.com/cat.png)")
	if !strings.Contains(out, `loading="lazy"`) {
		t.Errorf("Expected lazy image, got %q", out)
	}
	if RenderMarkdown("") != "" {
		t.Errorf("Expected empty output for empty input")
	}
}
