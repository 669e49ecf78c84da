package config

import (
	"slices"
	"strings"
	"unicode"

	apperrors "github.com/matzehuels/autobuild/pkg/errors"
)

// OptionalDeps maps a package name to the dependency names it may be built
// without. Order is preserved and duplicates are kept.
type OptionalDeps map[string][]string

// ParseOptionalDeps parses "PKG:IGNORED,PKG:IGNORED".
//
// All whitespace is removed first. Each entry is split at its first colon, so
// "a:b:c" maps a to "b:c". An empty string yields an empty map. An entry
// without a colon is an [apperrors.ErrCodeInvalidDependencySpec] error and no
// partial result is returned.
func ParseOptionalDeps(s string) (OptionalDeps, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	res := OptionalDeps{}
	if s == "" {
		return res, nil
	}
	for _, entry := range strings.Split(s, ",") {
		pkg, ignored, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, apperrors.New(apperrors.ErrCodeInvalidDependencySpec,
				"invalid optional dependency %q: expected PKG:IGNORED", entry)
		}
		res[pkg] = append(res[pkg], ignored)
	}
	return res, nil
}

// ApplyOptionalDeps parses s and appends every entry to c.OptionalDeps.
// Existing entries are extended, never replaced. On a parse error c is unchanged.
func (c *Config) ApplyOptionalDeps(s string) error {
	parsed, err := ParseOptionalDeps(s)
	if err != nil {
		return err
	}
	if c.OptionalDeps == nil {
		c.OptionalDeps = OptionalDeps{}
	}
	for pkg, ignored := range parsed {
		c.OptionalDeps[pkg] = append(c.OptionalDeps[pkg], ignored...)
	}
	return nil
}

// Ignored reports whether dep is listed as optional for pkg.
func (d OptionalDeps) Ignored(pkg, dep string) bool {
	return slices.Contains(d[pkg], dep)
}
