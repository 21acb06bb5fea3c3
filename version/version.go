// Package version models Tor-style dotted version numbers and defines a
// total order between versions of the same named package.
//
// A version string such as "0.2.5.1-alpha" splits into four fields:
// major, minor, micro and a trailing prerelease token. The prerelease
// token may carry a non-numeric qualifier ("-alpha", "-rc"); a release
// without such a qualifier always outranks any prereleased build of the
// same version, which is implemented by substituting a sentinel value
// ranked above every qualifier.
//
// Parsing is best effort and never fails: a short or dotless input
// produces a partially populated (or empty) value flagged as not well
// formed rather than an error. Comparison fails only when the two
// versions belong to different named packages.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// IncomparableError reports an attempt to order two versions that belong
// to different named packages. It carries both labels for diagnostics.
type IncomparableError struct {
	Package string
	Other   string
}

func (e *IncomparableError) Error() string {
	return fmt.Sprintf("incomparable versions: package %q != %q", e.Package, e.Other)
}

// Components holds the dot-separated fields of a version string. Fields
// keep their original token form: no numeric validation happens at parse
// time, so a trailing token such as "20-rc" carries both its numeric
// prefix and its qualifier.
type Components struct {
	Major string
	Minor string
	Micro string

	// Prerelease is the token after the last dot, e.g. "20" or "1-alpha".
	Prerelease string

	// WellFormed reports whether the input supplied all four fields.
	// A short input keeps the fields it got; a dotless input keeps none.
	// Neither case is an error, but such values are not meaningfully
	// ordered against fully populated ones.
	WellFormed bool
}

// Parse splits raw into version components. Tokens are assigned from the
// end of the split, prerelease first, then micro, minor and major, so a
// version with extra leading fields is tolerated (the extras are ignored)
// while a short one leaves the major side empty. Parse never fails;
// inspect WellFormed for degraded input.
func Parse(raw string) Components {
	var c Components
	if !strings.Contains(raw, ".") {
		return c
	}

	fields := strings.Split(raw, ".")
	assign := []*string{&c.Prerelease, &c.Micro, &c.Minor, &c.Major}
	n := 0
	for i := len(fields) - 1; i >= 0 && n < len(assign); i-- {
		*assign[n] = fields[i]
		n++
	}
	c.WellFormed = n == len(assign)
	return c
}

// Version couples parsed components with an optional package label
// naming the software the version belongs to, e.g. "tor". Versions of
// different named packages are not comparable. Values are immutable
// after construction and safe for concurrent use.
type Version struct {
	Components

	Package string
}

// New parses raw and attaches the package label, which may be empty.
// Like Parse it tolerates malformed input; ordering such a value against
// a populated one is a best-effort fallback only.
func New(raw, pkg string) Version {
	return Version{Components: Parse(raw), Package: pkg}
}

// qualifier is the non-numeric tail of a prerelease token, or the absent
// tail standing in for a plain release.
type qualifier struct {
	tail    string
	present bool
}

// infinite is the sentinel substituted whenever a prerelease token has no
// qualifier. It compares equal only to itself and greater than every
// present qualifier, so an unsuffixed release outranks any prereleased
// build of the same version. Exactly one instance exists per process and
// it is never mutated.
var infinite = qualifier{}

func (q qualifier) cmp(o qualifier) int {
	switch {
	case !q.present && !o.present:
		return 0
	case !q.present:
		return 1
	case !o.present:
		return -1
	}
	return strings.Compare(q.tail, o.tail)
}

// splitPrerelease separates the numeric prefix of a prerelease token from
// its qualifier, so "20-rc" orders by 20 first and "-rc" second. A token
// without a qualifier maps to the infinite sentinel.
func splitPrerelease(tok string) (string, qualifier) {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	if i < len(tok) {
		return tok[:i], qualifier{tail: tok[i:], present: true}
	}
	return tok, infinite
}

// cmpToken compares two field tokens numerically when both parse as
// integers, lexically otherwise. An empty token sorts before a populated
// one either way.
func cmpToken(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// Compare is the three-way comparator every relational method derives
// from. It returns -1, 0 or 1, and fails with *IncomparableError when v
// and other carry different non-empty package labels.
//
// Fields are compared in the fixed order major, minor, micro,
// prerelease. The prerelease token orders by its numeric prefix first;
// when the prefixes tie, the token without a qualifier takes the
// infinite sentinel and wins, so "0.2.4.20" ranks above "0.2.4.20-rc".
func (v Version) Compare(other Version) (int, error) {
	if v.Package != other.Package && v.Package != "" && other.Package != "" {
		return 0, &IncomparableError{Package: v.Package, Other: other.Package}
	}

	for _, pair := range [...][2]string{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Micro, other.Micro},
	} {
		if c := cmpToken(pair[0], pair[1]); c != 0 {
			return c, nil
		}
	}

	vn, vq := splitPrerelease(v.Prerelease)
	on, oq := splitPrerelease(other.Prerelease)
	if c := cmpToken(vn, on); c != 0 {
		return c, nil
	}
	return vq.cmp(oq), nil
}

// Equal reports whether v and other denote the same version of the same
// package.
func (v Version) Equal(other Version) (bool, error) {
	c, err := v.Compare(other)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

// NotEqual is the negation of Equal.
func (v Version) NotEqual(other Version) (bool, error) {
	c, err := v.Compare(other)
	if err != nil {
		return false, err
	}
	return c != 0, nil
}

// Less reports whether v orders strictly before other.
func (v Version) Less(other Version) (bool, error) {
	c, err := v.Compare(other)
	if err != nil {
		return false, err
	}
	return c < 0, nil
}

// LessOrEqual reports whether v orders before other or equals it.
func (v Version) LessOrEqual(other Version) (bool, error) {
	c, err := v.Compare(other)
	if err != nil {
		return false, err
	}
	return c <= 0, nil
}

// Greater reports whether v orders strictly after other.
func (v Version) Greater(other Version) (bool, error) {
	c, err := v.Compare(other)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// GreaterOrEqual reports whether v orders after other or equals it.
func (v Version) GreaterOrEqual(other Version) (bool, error) {
	c, err := v.Compare(other)
	if err != nil {
		return false, err
	}
	return c >= 0, nil
}

// PrefixedPrerelease returns the prerelease token prefixed by sep, or the
// empty string when there is no prerelease.
func (v Version) PrefixedPrerelease(sep string) string {
	if v.Prerelease == "" {
		return ""
	}
	return sep + v.Prerelease
}

// Base returns the version number without the package label, e.g.
// "0.2.5.1-alpha".
func (v Version) Base() string {
	return fmt.Sprintf("%s.%s.%s%s", v.Major, v.Minor, v.Micro, v.PrefixedPrerelease("."))
}

// String renders the package label and base version, e.g. "tor-0.2.4.20",
// or just the base version when no label is set.
func (v Version) String() string {
	if v.Package != "" {
		return v.Package + "-" + v.Base()
	}
	return v.Base()
}
