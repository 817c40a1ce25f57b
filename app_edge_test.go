package main

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: result slices are non-nil so JSON serializes as [].
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := newTestApp(t)
	result := app.Load("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
	if result.Name != "" || result.Facets != 0 {
		t.Errorf("empty source reported %q with %d facets", result.Name, result.Facets)
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax error mid-expression: unmatched parens -> eval error.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := newTestApp(t)

	// Put valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(+ 1 2)\n(template \"t\""
	result := app.Load(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	if e.Line < 0 {
		t.Errorf("line should be non-negative, got %d", e.Line)
	}
}

// ---------------------------------------------------------------------------
// 3. Source that runs but never declares a template.
// ---------------------------------------------------------------------------

func TestE2ENoTemplate(t *testing.T) {
	app := newTestApp(t)
	result := app.Load("(def width 4)\n(+ width 2)")

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "no template") {
		t.Errorf("errors = %v", result.Errors)
	}
}

// ---------------------------------------------------------------------------
// 4. Comments and whitespace only behave like an empty editor.
// ---------------------------------------------------------------------------

func TestE2ECommentsAndWhitespace(t *testing.T) {
	tests := []struct {
		name   string
		source string
		errors int
	}{
		{"whitespace only", "   \n\t\n  ", 0},
		{"comments only", ";; nothing here\n;; still nothing", 1},
		{"comments around template", ";; head\n(letter)\n;; tail", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			result := app.Load(tt.source)
			if len(result.Errors) != tt.errors {
				t.Errorf("got %d errors (%v), want %d", len(result.Errors), result.Errors, tt.errors)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 5. Structural errors from validation reach the frontend.
// ---------------------------------------------------------------------------

func TestE2EValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"dangling link",
			`(template "t" (layer (facet :vertices (rect 2 2) :links (list (link 0 3 0) :none :none :none))))`,
			"does not exist",
		},
		{
			"zero length edge",
			`(template "t" (layer (facet :vertices (list (vec2 0 0) (vec2 0 0) (vec2 1 1)))))`,
			"zero length",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			result := app.Load(tt.source)
			var msgs []string
			for _, e := range result.Errors {
				msgs = append(msgs, e.Message)
			}
			if joined := strings.Join(msgs, "\n"); !strings.Contains(joined, tt.want) {
				t.Errorf("errors %q do not mention %q", joined, tt.want)
			}
			if app.fold.Template().Name != "letter" {
				t.Error("a failed load must keep the previous template")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 6. Advisory findings load but travel back as warnings.
// ---------------------------------------------------------------------------

func TestE2EWarnings(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"link below the bottom layer",
			`(template "t" (layer (facet :vertices (rect 2 2) :links (list :none :none :none (link -1 0 1)))))`,
			"does not exist",
		},
		{
			"misaligned link",
			`(template "t"
			   (layer
			     (facet :vertices (rect 2 2) :links (list :none (link 0 1 3) :none :none))
			     (facet :vertices (rect 2 2) :links (list :none :none :none (link 0 0 1)) :place (place 5 0))))`,
			"does not meet",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			result := app.Load(tt.source)
			if len(result.Errors) != 0 {
				t.Fatalf("unexpected errors: %v", result.Errors)
			}
			var msgs []string
			for _, w := range result.Warnings {
				msgs = append(msgs, w.Message)
			}
			if joined := strings.Join(msgs, "\n"); !strings.Contains(joined, tt.want) {
				t.Errorf("warnings %q do not mention %q", joined, tt.want)
			}
			if result.Name != "t" || app.fold.Template().Name != "t" {
				t.Errorf("template not loaded: %q", result.Name)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 7. Rapid re-evaluation: the last successful load wins.
// ---------------------------------------------------------------------------

func TestE2ERapidLoadAlternating(t *testing.T) {
	app := newTestApp(t)
	sources := []string{"(letter)", "(booklet)", "(trifold)", "(zfold)"}
	for i := 0; i < 12; i++ {
		src := sources[i%len(sources)]
		if res := app.Load(src); len(res.Errors) > 0 {
			t.Fatalf("iteration %d (%s): %v", i, src, res.Errors)
		}
	}
	if got := app.fold.Template().Name; got != "zfold" {
		t.Errorf("final template = %q, want zfold", got)
	}
	if got := app.events.Len(); got != 2 {
		t.Errorf("dispatcher has %d subscribers, want orbit and one drag controller", got)
	}
}

// ---------------------------------------------------------------------------
// 8. Bindings called from several goroutines at once.
// ---------------------------------------------------------------------------

func TestE2EConcurrentBindings(t *testing.T) {
	app := newTestApp(t)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			app.Load("(booklet)")
		}()
		go func() {
			defer wg.Done()
			app.Frame()
		}()
		go func() {
			defer wg.Done()
			_ = app.Pointer(PointerData{Kind: "move", X: 10, Y: 10})
		}()
	}
	wg.Wait()
	if app.fold == nil {
		t.Fatal("engine lost")
	}
}

// ---------------------------------------------------------------------------
// 9. Pointer and viewport edge cases.
// ---------------------------------------------------------------------------

func TestE2EPointerUnknownKind(t *testing.T) {
	app := newTestApp(t)
	if err := app.Pointer(PointerData{Kind: "hover"}); err == nil {
		t.Error("expected an error for an unknown pointer kind")
	}
}

func TestE2EPressOffSheetOrbits(t *testing.T) {
	app := newTestApp(t)
	before := app.camera.Position

	pointer(t, app, "down", v3.Vec{X: 15, Y: 10})
	pointer(t, app, "move", v3.Vec{X: 10, Y: 10})
	pointer(t, app, "up", v3.Vec{X: 10, Y: 10})

	if app.fold.Gesture() != nil {
		t.Error("a press off the sheet must not start a fold")
	}
	if app.camera.Position == before {
		t.Error("dragging empty space should orbit the camera")
	}
}

func TestE2EResize(t *testing.T) {
	app := newTestApp(t)
	app.Resize(400, 200)
	if app.painter.Width != 400 || app.painter.Height != 200 || app.camera.Aspect != 2 {
		t.Errorf("viewport %dx%d aspect %g", app.painter.Width, app.painter.Height, app.camera.Aspect)
	}

	app.Resize(0, 100)
	if app.painter.Width != 400 {
		t.Error("a zero size should be ignored")
	}

	list := app.Frame()
	if list.Width != 400 || list.Height != 200 {
		t.Errorf("draw list is %dx%d", list.Width, list.Height)
	}
}

func TestE2EResetView(t *testing.T) {
	app := newTestApp(t)
	home := app.camera.Position
	app.camera.Orbit(30, 10)
	app.ResetView()
	if app.camera.Position.Sub(home).Length() > 1e-9 {
		t.Errorf("camera at %v, want %v", app.camera.Position, home)
	}
}

// ---------------------------------------------------------------------------
// 10. Colour palette wraps when a template has more facets than colours.
// ---------------------------------------------------------------------------

func TestE2EColorPaletteWrapping(t *testing.T) {
	var b strings.Builder
	b.WriteString(`(template "row" (layer`)
	for i := 0; i < len(colorPalette)+1; i++ {
		fmt.Fprintf(&b, ` (facet :vertices (rect 1 1) :place (place %d 0))`, i*2)
	}
	b.WriteString(`))`)

	app := newTestApp(t)
	if res := app.Load(b.String()); len(res.Errors) > 0 {
		t.Fatalf("load errors: %v", res.Errors)
	}
	result := app.Export()
	if len(result.Meshes) != len(colorPalette)+1 {
		t.Fatalf("expected %d meshes, got %d", len(colorPalette)+1, len(result.Meshes))
	}
	last := result.Meshes[len(colorPalette)]
	if last.Color != colorPalette[0] {
		t.Errorf("palette should wrap: got %q, want %q", last.Color, colorPalette[0])
	}
}
