package script

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/crease/pkg/template"
	v2 "github.com/deadsy/sdfx/vec/v2"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites template source before zygomys sees it:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keywords never collide with user variables.
//
//  2. Kebab-case to underscore: z-fold -> z_fold. zygomys reads a hyphen
//     between identifier characters as subtraction.
//
//  3. Comments: ; and ;; become //, the zygomys line comment.
//
// String literals (double-quoted and backtick) pass through untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only a hyphen between identifier characters is kebab-case.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec2 struct {
	vec v2.Vec
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

type sexpLink struct {
	link template.Link
}

func (l *sexpLink) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(link %d %d %d)", l.link.LayerOffset, l.link.Facet, l.link.Edge)
}
func (l *sexpLink) Type() *zygo.RegisteredType { return nil }

type sexpPlacement struct {
	p template.Placement
}

func (p *sexpPlacement) SexpString(ps *zygo.PrintState) string {
	if p.p.Mirrored() {
		return fmt.Sprintf("(place %g %g %g :mirror)", p.p.X, p.p.Y, math.Abs(p.p.Rotation))
	}
	return fmt.Sprintf("(place %g %g %g)", p.p.X, p.p.Y, p.p.Rotation)
}
func (p *sexpPlacement) Type() *zygo.RegisteredType { return nil }

type sexpFacet struct {
	f template.FacetTemplate
}

func (f *sexpFacet) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(facet %d vertices)", len(f.f.Vertices))
}
func (f *sexpFacet) Type() *zygo.RegisteredType { return nil }

type sexpLayer struct {
	layer template.Layer
}

func (l *sexpLayer) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(layer %d facets)", len(l.layer))
}
func (l *sexpLayer) Type() *zygo.RegisteredType { return nil }

type sexpTemplate struct {
	t *template.Template
}

func (t *sexpTemplate) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(template %q)", t.t.Name)
}
func (t *sexpTemplate) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A keyword
// followed by another keyword, or last in the list, is a flag.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			if _, next := isKW(args[i+1]); !next {
				result.kw[name] = args[i+1]
				i += 2
				continue
			}
		}
		result.kw[name] = zygo.SexpNull
		i++
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toVec2(s zygo.Sexp) (v2.Vec, error) {
	if v, ok := s.(*sexpVec2); ok {
		return v.vec, nil
	}
	return v2.Vec{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
}

// toLink accepts a link or the :none keyword for a free edge.
func toLink(s zygo.Sexp) (*template.Link, error) {
	if l, ok := s.(*sexpLink); ok {
		link := l.link
		return &link, nil
	}
	if name, ok := isKW(s); ok && name == "none" {
		return nil, nil
	}
	if s == zygo.SexpNull {
		return nil, nil
	}
	return nil, fmt.Errorf("expected link or :none, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

func vertexList(vs []v2.Vec) zygo.Sexp {
	out := make([]zygo.Sexp, len(vs))
	for i, v := range vs {
		out[i] = &sexpVec2{vec: v}
	}
	return &zygo.SexpArray{Val: out}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// collector receives the template defined by the source.
type collector struct {
	t *template.Template
}

func (c *collector) set(t *template.Template) error {
	if c.t != nil {
		return fmt.Errorf("template %q already defined", c.t.Name)
	}
	c.t = t
	return nil
}

// registerBuiltins installs the template builtins into env. The template
// defined by the program is stored in out.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, out *collector) {
	// -----------------------------------------------------------------------
	// (vec2 x y)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: y: %w", err)
		}
		return &sexpVec2{vec: v2.Vec{X: x, Y: y}}, nil
	})

	// -----------------------------------------------------------------------
	// (rect w h) -> vertices top-left, top-right, bottom-right, bottom-left
	// -----------------------------------------------------------------------
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("rect requires a width and a height")
		}
		w, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: width: %w", err)
		}
		h, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: height: %w", err)
		}
		x, y := w/2, h/2
		return vertexList([]v2.Vec{{X: -x, Y: y}, {X: x, Y: y}, {X: x, Y: -y}, {X: -x, Y: -y}}), nil
	})

	// -----------------------------------------------------------------------
	// (regular n radius) -> counter-clockwise n-gon, first vertex on +X
	// -----------------------------------------------------------------------
	env.AddFunction("regular", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("regular requires a side count and a radius")
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("regular: sides: %w", err)
		}
		if n < 3 {
			return zygo.SexpNull, fmt.Errorf("regular: need at least 3 sides, got %d", n)
		}
		r, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("regular: radius: %w", err)
		}
		vs := make([]v2.Vec, n)
		for i := range vs {
			a := 2 * math.Pi * float64(i) / float64(n)
			vs[i] = v2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}
		}
		return vertexList(vs), nil
	})

	// -----------------------------------------------------------------------
	// (link layer-offset facet edge)
	// -----------------------------------------------------------------------
	env.AddFunction("link", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("link requires a layer offset, a facet and an edge, got %d arguments", len(args))
		}
		var vals [3]int
		for i, what := range []string{"layer offset", "facet", "edge"} {
			v, err := toInt(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("link: %s: %w", what, err)
			}
			vals[i] = v
		}
		return &sexpLink{link: template.Link{LayerOffset: vals[0], Facet: vals[1], Edge: vals[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (place x y rotation :mirror)
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 3 {
			return zygo.SexpNull, fmt.Errorf("place takes at most x, y and rotation")
		}
		var vals [3]float64
		for i, a := range pa.positional {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: argument %d: %w", i+1, err)
			}
			vals[i] = f
		}
		p := template.Placement{X: vals[0], Y: vals[1], Rotation: math.Abs(vals[2])}
		if _, ok := pa.kw["mirror"]; ok {
			p.Rotation = math.Copysign(p.Rotation, -1)
		}
		return &sexpPlacement{p: p}, nil
	})

	// -----------------------------------------------------------------------
	// (facet :vertices (rect 4 6) :links (list :none (link 1 0 3) :none :none)
	//        :place (place 0 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("facet", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, ok := pa.kw["vertices"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("facet requires :vertices")
		}
		items, err := sexpListToSlice(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("facet: vertices: %w", err)
		}
		f := template.FacetTemplate{Vertices: make([]v2.Vec, len(items))}
		for i, it := range items {
			if f.Vertices[i], err = toVec2(it); err != nil {
				return zygo.SexpNull, fmt.Errorf("facet: vertex %d: %w", i, err)
			}
		}

		f.Links = make([]*template.Link, len(f.Vertices))
		if v, ok := pa.kw["links"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("facet: links: %w", err)
			}
			f.Links = make([]*template.Link, len(items))
			for i, it := range items {
				if f.Links[i], err = toLink(it); err != nil {
					return zygo.SexpNull, fmt.Errorf("facet: link %d: %w", i, err)
				}
			}
		}

		if v, ok := pa.kw["place"]; ok {
			p, ok := v.(*sexpPlacement)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("facet: place: expected placement, got %T (%s)", v, v.SexpString(nil))
			}
			f.Placement = p.p
		}
		return &sexpFacet{f: f}, nil
	})

	// -----------------------------------------------------------------------
	// (layer (facet ...) (facet ...))
	// -----------------------------------------------------------------------
	env.AddFunction("layer", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		l := make(template.Layer, 0, len(args))
		for i, a := range args {
			f, ok := a.(*sexpFacet)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("layer: facet %d: expected facet, got %T (%s)", i, a, a.SexpString(nil))
			}
			l = append(l, f.f)
		}
		return &sexpLayer{layer: l}, nil
	})

	// -----------------------------------------------------------------------
	// (template "name" (layer ...) (layer ...))
	// -----------------------------------------------------------------------
	env.AddFunction("template", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("template requires a name argument")
		}
		tname, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("template: name: %w", err)
		}
		t := &template.Template{Name: tname}
		for i := 1; i < len(args); i++ {
			l, ok := args[i].(*sexpLayer)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("template: layer %d: expected layer, got %T (%s)",
					i-1, args[i], args[i].SexpString(nil))
			}
			t.Layers = append(t.Layers, l.layer)
		}
		if err := out.set(t); err != nil {
			return zygo.SexpNull, fmt.Errorf("template: %w", err)
		}
		return &sexpTemplate{t: t}, nil
	})

	// -----------------------------------------------------------------------
	// (letter) (booklet) (trifold) (zfold)
	// -----------------------------------------------------------------------
	samples := map[string]func() *template.Template{
		"letter":  template.Letter,
		"booklet": template.Booklet,
		"trifold": template.TriFold,
		"zfold":   template.ZFold,
	}
	for sname, build := range samples {
		build := build
		env.AddFunction(sname, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 0 {
				return zygo.SexpNull, fmt.Errorf("%s takes no arguments", name)
			}
			t := build()
			if err := out.set(t); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return &sexpTemplate{t: t}, nil
		})
	}
}
