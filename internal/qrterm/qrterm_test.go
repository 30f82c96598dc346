package qrterm

import (
	"strings"
	"testing"
)

func TestRenderProducesUniformBlock(t *testing.T) {
	out := Render("http://127.0.0.1:8000")
	if out == "" {
		t.Fatal("empty render")
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 10 {
		t.Fatalf("suspiciously small QR, %d lines", len(lines))
	}
	width := len([]rune(lines[0]))
	for i, line := range lines {
		if len([]rune(line)) != width {
			t.Errorf("line %d width %d, want %d", i, len([]rune(line)), width)
		}
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %d missing indent", i)
		}
	}
}

func TestRenderDiffersPerContent(t *testing.T) {
	if Render("a") == Render("b") {
		t.Error("different content rendered identically")
	}
}
