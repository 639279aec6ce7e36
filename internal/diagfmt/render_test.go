package diagfmt

import (
	"strings"
	"testing"

	"emojicode/internal/diag"
	"emojicode/internal/source"
)

func TestRenderPlainDiagnostic(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.emojic", []byte("abc def\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaVariableNotFound, source.Span{File: id, Start: 4, End: 7},
		"variable def not found"))

	r := NewRenderer(fs, ColorOff, nil)
	var sb strings.Builder
	r.Render(&sb, bag)
	out := sb.String()

	if !strings.Contains(out, "main.emojic:1:5: ERROR [SEM3003]: variable def not found") {
		t.Fatalf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "  abc def\n      ^^^\n") {
		t.Fatalf("caret run misplaced:\n%s", out)
	}
	if !strings.Contains(out, "1 error(s), 0 warning(s)") {
		t.Fatalf("summary missing:\n%s", out)
	}
}

func TestCaretAlignmentUnderWideIdentifiers(t *testing.T) {
	fs := source.NewFileSet()
	// 🐷 is four bytes but two display cells; the caret under x must be
	// padded by display width, not byte count.
	id := fs.AddVirtual("wide.emojic", []byte("🐷x\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaShadowing, source.Span{File: id, Start: 4, End: 5}, "x"))

	r := NewRenderer(fs, ColorOff, nil)
	var sb strings.Builder
	r.Render(&sb, bag)
	out := sb.String()

	if !strings.Contains(out, "  🐷x\n    ^\n") {
		t.Fatalf("caret not aligned to display column:\n%s", out)
	}
}

func TestParseColorMode(t *testing.T) {
	if ParseColorMode("on") != ColorOn || ParseColorMode("always") != ColorOn {
		t.Fatal("on/always not parsed")
	}
	if ParseColorMode("off") != ColorOff || ParseColorMode("never") != ColorOff {
		t.Fatal("off/never not parsed")
	}
	if ParseColorMode("auto") != ColorAuto || ParseColorMode("") != ColorAuto {
		t.Fatal("auto default broken")
	}
}
