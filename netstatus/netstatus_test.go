package netstatus

import (
	"strings"
	"testing"
	"time"
)

func testRouter() Router {
	return Router{
		Nickname:         "StingilyScampers",
		IdentityDigest:   []byte("0123456789abcdefghij"),
		DescriptorDigest: []byte("jihgfedcba9876543210"),
		Published:        time.Date(2014, 8, 6, 20, 40, 21, 0, time.UTC),
		IPv4:             "39.102.19.106",
		ORPort:           36286,
		Bandwidth:        1481409,
	}
}

func TestGenerateBridgeNetstatus(t *testing.T) {
	doc := string(GenerateBridgeNetstatus(testRouter()))

	want := "r StingilyScampers MDEyMzQ1Njc4OWFiY2RlZmdoaWo amloZ2ZlZGNiYTk4NzY1NDMyMTA 2014-08-06 20:40:21 39.102.19.106 36286 0\n" +
		"s Fast Guard Running Stable Valid\n" +
		"w Bandwidth=1481409\n" +
		"p reject 1-65535\n"
	if doc != want {
		t.Errorf("document mismatch.\nGot:\n%s\nWant:\n%s", doc, want)
	}
}

func TestGenerateBridgeNetstatusIPv6(t *testing.T) {
	r := testRouter()
	r.IPv6 = "72be:7d50:9c91:1170:2bf9:d760:bee1:66e1"
	doc := string(GenerateBridgeNetstatus(r))

	wantLine := "a [72be:7d50:9c91:1170:2bf9:d760:bee1:66e1]:36285\n"
	if !strings.Contains(doc, wantLine) {
		t.Errorf("document missing address line %q:\n%s", wantLine, doc)
	}
}

func TestGenerateBridgeNetstatusCustomFlags(t *testing.T) {
	r := testRouter()
	r.Flags = "Running Valid"
	doc := string(GenerateBridgeNetstatus(r))
	if !strings.Contains(doc, "s Running Valid\n") {
		t.Errorf("custom flags not rendered:\n%s", doc)
	}
}

func TestParseBandwidthLine(t *testing.T) {
	kb, err := ParseBandwidthLine("bandwidth 1073741824 1073741824 1516802867")
	if err != nil {
		t.Fatalf("ParseBandwidthLine failed: %v", err)
	}
	if kb != 1516802867/1024 {
		t.Errorf("observed = %d, want %d", kb, 1516802867/1024)
	}

	if _, err := ParseBandwidthLine(""); err == nil {
		t.Error("expected error for empty line")
	}
	if _, err := ParseBandwidthLine("bandwidth a b c"); err == nil {
		t.Error("expected error for non-numeric observed value")
	}
}

func TestServerVersionsLine(t *testing.T) {
	line := ServerVersionsLine()
	if !strings.HasPrefix(line, "server-versions 0.2.2.39,") {
		t.Errorf("unexpected line prefix: %q", line)
	}
	if got := strings.Count(line, ","); got != len(ServerVersions)-1 {
		t.Errorf("expected %d separators, got %d", len(ServerVersions)-1, got)
	}
}

func TestSortVersions(t *testing.T) {
	// Reverse the chronological list and expect sorting to restore it.
	shuffled := make([]string, len(ServerVersions))
	for i, v := range ServerVersions {
		shuffled[len(ServerVersions)-1-i] = v
	}

	sorted, err := SortVersions("tor", shuffled)
	if err != nil {
		t.Fatalf("SortVersions failed: %v", err)
	}
	for i, v := range sorted {
		if v != ServerVersions[i] {
			t.Fatalf("position %d = %q, want %q", i, v, ServerVersions[i])
		}
	}
}
