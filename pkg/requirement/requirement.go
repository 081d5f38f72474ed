// Package requirement parses the dependency specifiers handed to pip.
//
// Only the simple "name" and "name<op>version" forms are accepted. Anything
// richer (extras, markers, URLs) is pip's business and out of scope here.
// Post releases are compared as their base release, so ">=7.0.post1" also
// admits 7.0 itself.
package requirement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
)

// specifierPattern splits "pytest-asyncio>=0.21.0" into name and constraint.
var specifierPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*((?:[<>!=~]=?|===?)\s*.*)?$`)

// Specifier is a package name plus an optional version constraint.
type Specifier struct {
	Name string

	// Constraint is nil when any version is acceptable.
	Constraint version.Constraints

	raw string
}

// Parse parses a single dependency specifier such as "pytest>=7.0".
func Parse(s string) (Specifier, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Specifier{}, fmt.Errorf("empty dependency specifier")
	}

	m := specifierPattern.FindStringSubmatch(raw)
	if m == nil {
		return Specifier{}, fmt.Errorf("invalid dependency specifier %q", s)
	}

	spec := Specifier{Name: m[1], raw: raw}
	if m[2] == "" {
		return spec, nil
	}

	c, err := version.NewConstraint(pipToConstraint(m[2]))
	if err != nil {
		return Specifier{}, fmt.Errorf("parsing version constraint of %q: %w", s, err)
	}
	spec.Constraint = c

	return spec, nil
}

// ParseAll parses every specifier, stopping at the first error.
func ParseAll(ss []string) ([]Specifier, error) {
	specs := make([]Specifier, 0, len(ss))
	for _, s := range ss {
		spec, err := Parse(s)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// String renders the specifier the way pip expects it on the command line.
func (s Specifier) String() string {
	if s.raw != "" {
		return s.raw
	}
	if s.Constraint == nil {
		return s.Name
	}
	return s.Name + strings.ReplaceAll(s.Constraint.String(), " ", "")
}

var (
	// devPattern and postPattern find PEP 440 dev and post release suffixes,
	// which go-version only understands as a pre-release ("-dev1") and as
	// build metadata ("+post1").
	devPattern  = regexp.MustCompile(`(\d)[._-]?dev(\d*)`)
	postPattern = regexp.MustCompile(`(\d)[._-]?post(\d*)`)
)

// pipToConstraint rewrites the PEP 440 operators and suffixes go-version does
// not know. "~=" is the compatible-release operator, which go-version spells
// "~>". A post release compares equal to its base release.
func pipToConstraint(c string) string {
	c = strings.TrimSpace(c)
	switch {
	case strings.HasPrefix(c, "~="):
		c = "~>" + strings.TrimPrefix(c, "~=")
	case strings.HasPrefix(c, "==="):
		c = "=" + strings.TrimPrefix(c, "===")
	case strings.HasPrefix(c, "=="):
		c = "=" + strings.TrimPrefix(c, "==")
	}
	c = devPattern.ReplaceAllString(c, "${1}-dev${2}")
	return postPattern.ReplaceAllString(c, "${1}+post${2}")
}
