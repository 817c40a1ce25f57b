package template

import (
	"errors"
	"fmt"

	"github.com/chazu/crease/pkg/geom"
)

// ValidationSeverity indicates whether a validation finding blocks building
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks building
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Facet    *FacetRef          // which facet has the problem (nil if template-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Facet == nil {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] facet %s: %s", e.Severity, e.Facet, e.Message)
}

// ValidationResult bundles errors (blocking) and warnings (advisory).
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// LinkTolerance is how far apart linked edge endpoints may sit in the stack
// plane before the link is reported as misaligned.
const LinkTolerance = 1e-6

// Validate runs the structural checks followed by the geometric checks and
// splits the findings by severity. It never mutates the template.
func Validate(t *Template) ValidationResult {
	var all []ValidationError
	all = append(all, validateStructure(t)...)
	all = append(all, validateLinks(t)...)
	all = append(all, validateGeometry(t)...)

	var result ValidationResult
	for _, e := range all {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// Check returns the blocking findings of Validate joined into one error, or
// nil when the template can be built.
func Check(t *Template) error {
	if t == nil {
		return errors.New("template: nil template")
	}
	r := Validate(t)
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return fmt.Errorf("template %q: %w", t.Name, errors.Join(errs...))
}

func refPtr(li, fi int) *FacetRef {
	return &FacetRef{Layer: li, Index: fi}
}

// validateStructure checks that facets are polygons with one link slot per
// edge.
func validateStructure(t *Template) []ValidationError {
	var errs []ValidationError
	if t.FacetCount() == 0 {
		errs = append(errs, ValidationError{
			Message:  "template has no facets",
			Severity: SeverityError,
		})
	}
	for li, l := range t.Layers {
		if len(l) == 0 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("layer %d is empty", li),
				Severity: SeverityWarning,
			})
		}
		for fi := range l {
			f := &l[fi]
			if len(f.Vertices) < 3 {
				errs = append(errs, ValidationError{
					Facet:    refPtr(li, fi),
					Message:  fmt.Sprintf("facet needs at least 3 vertices, has %d", len(f.Vertices)),
					Severity: SeverityError,
				})
				continue
			}
			if len(f.Links) != len(f.Vertices) {
				errs = append(errs, ValidationError{
					Facet:    refPtr(li, fi),
					Message:  fmt.Sprintf("facet has %d edges but %d link slots", len(f.Vertices), len(f.Links)),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateLinks checks every link target. Targets of skipped (negative)
// links are only advisory since no geometry is built from them.
func validateLinks(t *Template) []ValidationError {
	var errs []ValidationError
	for li, l := range t.Layers {
		for fi := range l {
			for ei, link := range l[fi].Links {
				if link == nil {
					continue
				}
				if _, ref, ok := t.Target(li, link); !ok {
					sev := SeverityError
					if link.LayerOffset < 0 {
						sev = SeverityWarning
					}
					errs = append(errs, ValidationError{
						Facet:    refPtr(li, fi),
						Message:  fmt.Sprintf("edge %d links to %s edge %d which does not exist", ei, ref, link.Edge),
						Severity: sev,
					})
				}
			}
		}
	}
	return errs
}

// validateGeometry checks convexity, degenerate edges and that linked edges
// meet in the stack plane.
func validateGeometry(t *Template) []ValidationError {
	var errs []ValidationError
	for li, l := range t.Layers {
		for fi := range l {
			f := &l[fi]
			if len(f.Vertices) < 3 {
				continue
			}
			if !geom.IsConvex(f.Vertices) {
				errs = append(errs, ValidationError{
					Facet:    refPtr(li, fi),
					Message:  "facet polygon is not convex",
					Severity: SeverityWarning,
				})
			}
			for ei := range f.Vertices {
				a, b := geom.Edge(f.Vertices, ei)
				if geom.Dist2(a, b) < geom.Epsilon {
					errs = append(errs, ValidationError{
						Facet:    refPtr(li, fi),
						Message:  fmt.Sprintf("edge %d has zero length", ei),
						Severity: SeverityError,
					})
				}
			}
			errs = append(errs, validateLinkAlignment(t, li, fi)...)
		}
	}
	return errs
}

func validateLinkAlignment(t *Template, li, fi int) []ValidationError {
	var errs []ValidationError
	f := &t.Layers[li][fi]
	world := f.World()
	for ei, link := range f.Links {
		if link == nil || ei >= len(world) {
			continue
		}
		target, _, ok := t.Target(li, link)
		if !ok || len(target.Vertices) < 3 {
			continue
		}
		a0, a1 := geom.Edge(world, ei)
		b0, b1 := geom.Edge(target.World(), link.Edge)
		direct := geom.Dist2(a0, b0) + geom.Dist2(a1, b1)
		crossed := geom.Dist2(a0, b1) + geom.Dist2(a1, b0)
		if min(direct, crossed) > LinkTolerance {
			errs = append(errs, ValidationError{
				Facet:    refPtr(li, fi),
				Message:  fmt.Sprintf("edge %d does not meet its linked edge (off by %.4g)", ei, min(direct, crossed)),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
