// pkg/core/requirement.go
package core

import (
	"fmt"
	"regexp"
	"strings"
)

var requirementName = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?`)

// Requirement is a single dependency declaration, e.g. "pyhopshive[thrift]>=0.6; python_version >= '3.6'"
type Requirement struct {
	Name       string   `yaml:"name" json:"name"`
	Extras     []string `yaml:"extras,omitempty" json:"extras,omitempty"`
	Constraint string   `yaml:"constraint,omitempty" json:"constraint,omitempty"`
	Marker     string   `yaml:"marker,omitempty" json:"marker,omitempty"`
}

// ParseRequirement parses a requirement specifier
func ParseRequirement(s string) (Requirement, error) {
	var req Requirement

	spec := strings.TrimSpace(s)
	if idx := strings.Index(spec, ";"); idx >= 0 {
		req.Marker = strings.TrimSpace(spec[idx+1:])
		spec = strings.TrimSpace(spec[:idx])
		if req.Marker == "" {
			return Requirement{}, fmt.Errorf("requirement %q: empty environment marker", s)
		}
	}

	name := requirementName.FindString(spec)
	if name == "" {
		return Requirement{}, fmt.Errorf("requirement %q: missing package name", s)
	}
	req.Name = name
	rest := strings.TrimSpace(spec[len(name):])

	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return Requirement{}, fmt.Errorf("requirement %q: unterminated extras", s)
		}
		for _, extra := range strings.Split(rest[1:end], ",") {
			extra = strings.TrimSpace(extra)
			if extra == "" {
				continue
			}
			if requirementName.FindString(extra) != extra {
				return Requirement{}, fmt.Errorf("requirement %q: invalid extra %q", s, extra)
			}
			req.Extras = append(req.Extras, extra)
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	// Parenthesised constraints are the legacy form of the same thing
	if strings.HasPrefix(rest, "(") {
		if !strings.HasSuffix(rest, ")") {
			return Requirement{}, fmt.Errorf("requirement %q: unbalanced parentheses", s)
		}
		rest = strings.TrimSpace(rest[1 : len(rest)-1])
	}

	if rest != "" && !strings.ContainsAny(rest[:1], "<>=!~") {
		return Requirement{}, fmt.Errorf("requirement %q: unexpected %q after name", s, rest)
	}
	req.Constraint = strings.Join(strings.Fields(rest), "")

	return req, nil
}

// ParseRequirements parses a list of requirement specifiers, keeping their order
func ParseRequirements(specs []string) ([]Requirement, error) {
	reqs := make([]Requirement, 0, len(specs))
	for _, s := range specs {
		req, err := ParseRequirement(s)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// String renders the requirement in canonical form
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteString("]")
	}
	b.WriteString(r.Constraint)
	if r.Marker != "" {
		b.WriteString("; ")
		b.WriteString(r.Marker)
	}
	return b.String()
}
