package markdown

import (
	"strings"
	"testing"
)

func TestParseKeepsFieldOrder(t *testing.T) {
	t.Parallel()
	note, err := Parse("---\r\nzeta: 1\r\nalpha: two\r\n---\r\nbody\r\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(note.Meta) != 2 || note.Meta[0].Key != "zeta" || note.Meta[1].Key != "alpha" {
		t.Fatalf("unexpected meta %+v", note.Meta)
	}
	if note.Body != "body\n" {
		t.Fatalf("unexpected body %q", note.Body)
	}

	note.Set("alpha", "three")
	note.Set("beta", true)
	note.Delete("zeta")
	out, err := note.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "---\nalpha: three\nbeta: true\n---\n\nbody\n"; out != want {
		t.Fatalf("render = %q, want %q", out, want)
	}
}

func TestParseWithoutFrontmatter(t *testing.T) {
	t.Parallel()
	note, err := Parse("# plain\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(note.Meta) != 0 || note.Body != "# plain\n" {
		t.Fatalf("unexpected note %+v", note)
	}
	if _, err := Parse("---\nid: 1\nno closing fence\n"); err == nil {
		t.Fatalf("expected error for unterminated frontmatter")
	}
}

func TestSetBlockReplacesInPlace(t *testing.T) {
	t.Parallel()
	note := Note{Body: "intro"}
	note.SetBlock("records", "first")
	if !strings.HasPrefix(note.Body, "intro\n\n<!-- punchclock:records:start -->\nfirst\n") {
		t.Fatalf("unexpected body %q", note.Body)
	}

	note.Body += "\nouttro\n"
	note.SetBlock("records", "second")
	got, ok := note.Block("records")
	if !ok || got != "second" {
		t.Fatalf("block = %q, %v", got, ok)
	}
	if strings.Count(note.Body, "punchclock:records:start") != 1 || !strings.Contains(note.Body, "outtro") {
		t.Fatalf("unexpected body %q", note.Body)
	}
	if _, ok := note.Block("missing"); ok {
		t.Fatalf("missing block should not be found")
	}
}
