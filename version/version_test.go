package version

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw        string
		major      string
		minor      string
		micro      string
		prerelease string
		wellFormed bool
	}{
		{"0.2.4.20", "0", "2", "4", "20", true},
		{"0.2.5.1-alpha", "0", "2", "5", "1-alpha", true},
		{"0.2.3.24-rc", "0", "2", "3", "24-rc", true},
		// Extra leading fields are ignored.
		{"9.0.2.4.20", "0", "2", "4", "20", true},
		// Short inputs leave the major side empty.
		{"2.4.20", "", "2", "4", "20", false},
		{"4.20", "", "", "4", "20", false},
	}

	for _, tt := range tests {
		c := Parse(tt.raw)
		if c.Major != tt.major || c.Minor != tt.minor || c.Micro != tt.micro || c.Prerelease != tt.prerelease {
			t.Errorf("Parse(%q) = %q.%q.%q pre=%q, want %q.%q.%q pre=%q",
				tt.raw, c.Major, c.Minor, c.Micro, c.Prerelease,
				tt.major, tt.minor, tt.micro, tt.prerelease)
		}
		if c.WellFormed != tt.wellFormed {
			t.Errorf("Parse(%q).WellFormed = %v, want %v", tt.raw, c.WellFormed, tt.wellFormed)
		}
	}
}

func TestParseDegenerate(t *testing.T) {
	c := Parse("notaversion")
	if c.Major != "" || c.Minor != "" || c.Micro != "" || c.Prerelease != "" {
		t.Errorf("degenerate parse populated fields: %+v", c)
	}
	if c.WellFormed {
		t.Error("degenerate parse reported WellFormed")
	}
}

func TestBaseRoundTrip(t *testing.T) {
	for _, raw := range []string{"0.2.2.39", "0.2.4.8-alpha", "0.2.4.20", "0.2.5.1-alpha"} {
		if got := New(raw, "").Base(); got != raw {
			t.Errorf("Base() = %q, want %q", got, raw)
		}
	}
}

func TestPrereleaseRule(t *testing.T) {
	release := New("0.2.4.20", "tor")
	for _, suffix := range []string{"-rc", "-alpha", "-beta", "+weird", "#x"} {
		pre := New("0.2.4.20"+suffix, "tor")

		greater, err := release.Greater(pre)
		if err != nil {
			t.Fatalf("Greater failed: %v", err)
		}
		if !greater {
			t.Errorf("expected %s > %s", release, pre)
		}

		less, err := pre.Less(release)
		if err != nil {
			t.Fatalf("Less failed: %v", err)
		}
		if !less {
			t.Errorf("expected %s < %s", pre, release)
		}
	}
}

func TestPrereleaseSuffixTieBreak(t *testing.T) {
	alpha := New("0.2.4.20-alpha", "tor")
	rc := New("0.2.4.20-rc", "tor")
	less, err := alpha.Less(rc)
	if err != nil {
		t.Fatal(err)
	}
	if !less {
		t.Errorf("expected %s < %s", alpha, rc)
	}
}

// serverVersions is the chronological server-versions sample list. The
// defined ordering must agree with this sequence.
var serverVersions = []string{
	"0.2.2.39",
	"0.2.3.24-rc",
	"0.2.3.25",
	"0.2.4.5-alpha",
	"0.2.4.6-alpha",
	"0.2.4.7-alpha",
	"0.2.4.8-alpha",
	"0.2.4.9-alpha",
	"0.2.4.10-alpha",
	"0.2.4.11-alpha",
	"0.2.4.12-alpha",
	"0.2.4.14-alpha",
	"0.2.4.15-rc",
	"0.2.4.16-rc",
	"0.2.4.17-rc",
	"0.2.4.18-rc",
	"0.2.4.19",
	"0.2.4.20",
	"0.2.5.1-alpha",
}

func TestMonotonicOrdering(t *testing.T) {
	for i := 0; i < len(serverVersions)-1; i++ {
		a := New(serverVersions[i], "tor")
		b := New(serverVersions[i+1], "tor")
		less, err := a.Less(b)
		if err != nil {
			t.Fatalf("Less(%s, %s) failed: %v", a, b, err)
		}
		if !less {
			t.Errorf("expected %s < %s", a, b)
		}
	}
}

func TestIncomparablePackages(t *testing.T) {
	tor := New("0.2.4.1", "tor")
	obfs := New("0.2.4.1", "obfs4")

	_, err := tor.Compare(obfs)
	if err == nil {
		t.Fatal("expected error comparing different packages")
	}
	var incomparable *IncomparableError
	if !errors.As(err, &incomparable) {
		t.Fatalf("expected *IncomparableError, got %T", err)
	}
	if incomparable.Package != "tor" || incomparable.Other != "obfs4" {
		t.Errorf("error payload = %q/%q, want tor/obfs4", incomparable.Package, incomparable.Other)
	}

	// Every derived relation must propagate the same failure rather than
	// defaulting to false.
	relations := []func(Version) (bool, error){
		tor.Equal, tor.NotEqual, tor.Less, tor.LessOrEqual, tor.Greater, tor.GreaterOrEqual,
	}
	for i, rel := range relations {
		if _, err := rel(obfs); err == nil {
			t.Errorf("relation %d did not propagate incomparable error", i)
		}
	}
}

func TestEmptyPackageIsComparable(t *testing.T) {
	labeled := New("0.2.4.1", "tor")
	unlabeled := New("0.2.4.2", "")
	less, err := labeled.Less(unlabeled)
	if err != nil {
		t.Fatalf("comparison with empty label failed: %v", err)
	}
	if !less {
		t.Error("expected 0.2.4.1 < 0.2.4.2")
	}
}

func TestDerivedRelationsAgreeWithCompare(t *testing.T) {
	samples := []string{"0.2.2.39", "0.2.4.5-alpha", "0.2.4.20", "0.2.4.20-rc", "0.2.5.1-alpha"}
	for _, ra := range samples {
		for _, rb := range samples {
			a, b := New(ra, "tor"), New(rb, "tor")
			c, err := a.Compare(b)
			if err != nil {
				t.Fatal(err)
			}

			checks := []struct {
				name string
				rel  func(Version) (bool, error)
				want bool
			}{
				{"Equal", a.Equal, c == 0},
				{"NotEqual", a.NotEqual, c != 0},
				{"Less", a.Less, c < 0},
				{"LessOrEqual", a.LessOrEqual, c <= 0},
				{"Greater", a.Greater, c > 0},
				{"GreaterOrEqual", a.GreaterOrEqual, c >= 0},
			}
			for _, chk := range checks {
				got, err := chk.rel(b)
				if err != nil {
					t.Fatal(err)
				}
				if got != chk.want {
					t.Errorf("%s(%s, %s) = %v, want %v", chk.name, ra, rb, got, chk.want)
				}
			}
		}
	}
}

func TestOrderLaws(t *testing.T) {
	vs := make([]Version, len(serverVersions))
	for i, raw := range serverVersions {
		vs[i] = New(raw, "tor")
	}

	// Irreflexivity.
	for _, v := range vs {
		if less, _ := v.Less(v); less {
			t.Errorf("Less(%s, %s) should be false", v, v)
		}
	}

	// Antisymmetry.
	for _, a := range vs {
		for _, b := range vs {
			ab, _ := a.Less(b)
			ba, _ := b.Less(a)
			if ab && ba {
				t.Errorf("both %s < %s and %s < %s", a, b, b, a)
			}
		}
	}

	// Transitivity across consecutive triples.
	for i := 0; i+2 < len(vs); i++ {
		ab, _ := vs[i].Less(vs[i+1])
		bc, _ := vs[i+1].Less(vs[i+2])
		ac, _ := vs[i].Less(vs[i+2])
		if ab && bc && !ac {
			t.Errorf("transitivity violated at %s, %s, %s", vs[i], vs[i+1], vs[i+2])
		}
	}
}

func TestIdempotentParse(t *testing.T) {
	a := New("0.2.4.17-rc", "tor")
	b := New("0.2.4.17-rc", "tor")
	equal, err := a.Equal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("two parses of the same string are not equal")
	}
}

func TestString(t *testing.T) {
	if got := New("0.2.5.1-alpha", "tor").String(); got != "tor-0.2.5.1-alpha" {
		t.Errorf("String() = %q, want %q", got, "tor-0.2.5.1-alpha")
	}
	if got := New("0.2.4.20", "").String(); got != "0.2.4.20" {
		t.Errorf("String() = %q, want %q", got, "0.2.4.20")
	}
}

func FuzzParse(f *testing.F) {
	for _, raw := range []string{"0.2.4.20", "0.2.5.1-alpha", "notaversion", "", "....", "a.b.c.d.e"} {
		f.Add(raw)
	}
	f.Fuzz(func(t *testing.T, raw string) {
		a := New(raw, "tor")
		b := New(raw, "tor")
		equal, err := a.Equal(b)
		if err != nil {
			t.Fatalf("same-package comparison failed: %v", err)
		}
		if !equal {
			t.Errorf("Parse(%q) not idempotent", raw)
		}
	})
}
