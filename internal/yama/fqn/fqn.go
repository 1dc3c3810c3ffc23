// Package fqn parses and formats the fully-qualified name / import-path
// grammar described in spec.md §6:
//
//	<install-name>[.segment]*:unqualified[::member]
//
// head = identifier (first segment); relative path = ".identifier" repeated;
// separator ":" introduces the item name; "::" inside the item name
// separates an owner from a method member. Parsing is total — malformed
// input is reported, never panics.
package fqn

import (
	"fmt"
	"strings"

	"github.com/tiriscoded/yama/internal/yama/signal"
)

// ImportPath is a parsed "<head>[.segment]*" path, before the ":" item
// separator. Head names a dep-name or "self", resolved via an Environment;
// the remaining segments are parcel-relative.
type ImportPath struct {
	Head     string
	Segments []string
}

func (p ImportPath) String() string {
	if len(p.Segments) == 0 {
		return p.Head
	}
	return p.Head + "." + strings.Join(p.Segments, ".")
}

// Tail returns the parcel-relative dotted path (no head).
func (p ImportPath) Tail() string {
	return strings.Join(p.Segments, ".")
}

// Qualified is a fully-qualified item name: an import path plus an
// unqualified name, optionally with a "::member" suffix for methods.
type Qualified struct {
	Path       ImportPath
	Unqualfied string
	Member     string // empty unless this names a method
}

func (q Qualified) IsMethod() bool { return q.Member != "" }

// UnqualifiedName returns "Owner" or "Owner::member" as it would appear
// inside a module's name table.
func (q Qualified) UnqualifiedName() string {
	if q.Member == "" {
		return q.Unqualfied
	}
	return q.Unqualfied + "::" + q.Member
}

func (q Qualified) String() string {
	return q.Path.String() + ":" + q.UnqualifiedName()
}

// Parse parses a fully-qualified name. Malformed input is reported with
// ImportModuleNotFound, matching spec.md §6 ("rejects malformed input with
// module_not_found").
func Parse(s string) (Qualified, error) {
	sepIdx := strings.IndexByte(s, ':')
	if sepIdx < 0 {
		return Qualified{}, notFound(s, "missing ':' separator")
	}
	pathPart := s[:sepIdx]
	rest := s[sepIdx+1:]
	// A second ':' (making "::") introduces a member name; anything else
	// after the first ':' that contains a bare single ':' is malformed.
	if strings.HasPrefix(rest, ":") {
		return Qualified{}, notFound(s, "item name is empty")
	}

	path, err := parseImportPath(pathPart, s)
	if err != nil {
		return Qualified{}, err
	}

	unqualified, member, err := parseItemName(rest, s)
	if err != nil {
		return Qualified{}, err
	}

	return Qualified{Path: path, Unqualfied: unqualified, Member: member}, nil
}

// ParseImportPath parses a bare "<head>[.segment]*" string with no ":" item
// separator — the form the compiler collaborator's Services.Import receives
// (spec.md §6 "self.X"/"dep.X").
func ParseImportPath(s string) (ImportPath, error) {
	return parseImportPath(s, s)
}

func parseImportPath(pathPart, whole string) (ImportPath, error) {
	if pathPart == "" {
		return ImportPath{}, notFound(whole, "empty import path")
	}
	segs := strings.Split(pathPart, ".")
	for _, seg := range segs {
		if !isIdentifier(seg) {
			return ImportPath{}, notFound(whole, fmt.Sprintf("invalid path segment %q", seg))
		}
	}
	return ImportPath{Head: segs[0], Segments: segs[1:]}, nil
}

func parseItemName(rest, whole string) (name, member string, err error) {
	if rest == "" {
		return "", "", notFound(whole, "empty item name")
	}
	if idx := strings.Index(rest, "::"); idx >= 0 {
		name = rest[:idx]
		member = rest[idx+2:]
		if !isIdentifier(name) || !isIdentifier(member) || strings.Contains(member, "::") {
			return "", "", notFound(whole, "invalid owner::member name")
		}
		return name, member, nil
	}
	if !isIdentifier(rest) {
		return "", "", notFound(whole, "invalid item name")
	}
	return rest, "", nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func notFound(whole, why string) error {
	return signal.New(signal.ImportModuleNotFound, fmt.Sprintf("malformed fully-qualified name %q: %s", whole, why), map[string]any{"input": whole})
}
