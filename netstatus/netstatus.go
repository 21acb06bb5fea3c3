// Package netstatus assembles synthetic network-status documents for
// bridge relays, together with the server-versions consensus data they
// reference.
package netstatus

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/onionforge/onionforge/descriptor"
	"github.com/onionforge/onionforge/version"
)

// DefaultFlags is the flag line used when a router specifies none.
const DefaultFlags = "Fast Guard Running Stable Valid"

// timestampLayout is the ISO 8601 form with a space separator used on
// "r" lines.
const timestampLayout = "2006-01-02 15:04:05"

// Router holds the fields of one synthetic bridge used to build a
// network-status entry.
type Router struct {
	Nickname string

	// IdentityDigest is the SHA-1 digest of the router's public
	// identity key.
	IdentityDigest []byte

	// DescriptorDigest is the SHA-1 digest of the router's server
	// descriptor, before the descriptor is signed.
	DescriptorDigest []byte

	Published time.Time

	IPv4   string
	ORPort int

	// IPv6 adds an additional "a" address line when set.
	IPv6 string

	// DirPort is rendered as 0 when unset, as bridges publish no
	// directory port.
	DirPort int

	// Flags replaces DefaultFlags when non-empty.
	Flags string

	// Bandwidth is the observed bandwidth in kilobytes per second.
	Bandwidth int64
}

// GenerateBridgeNetstatus renders an unsigned
// "@type bridge network-status 1.0" document for r:
//
//	r StingilyScampers Wdtrb4h8QVqqbDH4gMmVnAn2nYg 1BEVkVjixzVMFu7OK46GklhYtkg 2014-08-06 20:40:21 39.102.19.106 36286 0
//	a [72be:7d50:9c91:1170:2bf9:d760:bee1:66e1]:36285
//	s Fast Guard Running Stable Valid
//	w Bandwidth=1481409
//	p reject 1-65535
func GenerateBridgeNetstatus(r Router) []byte {
	var doc bytes.Buffer

	fmt.Fprintf(&doc, "r %s %s %s %s %s %d %d\n",
		r.Nickname,
		descriptor.Base64Digest(r.IdentityDigest),
		descriptor.Base64Digest(r.DescriptorDigest),
		r.Published.UTC().Format(timestampLayout),
		r.IPv4, r.ORPort, r.DirPort)

	if r.IPv6 != "" {
		// The additional ORPort is advertised one below the primary.
		fmt.Fprintf(&doc, "a [%s]:%d\n", r.IPv6, r.ORPort-1)
	}

	flags := r.Flags
	if flags == "" {
		flags = DefaultFlags
	}
	fmt.Fprintf(&doc, "s %s\n", flags)
	fmt.Fprintf(&doc, "w Bandwidth=%d\n", r.Bandwidth)
	doc.WriteString("p reject 1-65535\n")

	return doc.Bytes()
}

// ParseBandwidthLine extracts the trailing 'observed' value from a
// server-descriptor "bandwidth <average> <burst> <observed>" line and
// scales it from bytes to kilobytes.
func ParseBandwidthLine(line string) (int64, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty bandwidth line")
	}
	observed, err := strconv.ParseInt(fields[len(fields)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing bandwidth line %q: %w", line, err)
	}
	return observed / 1024, nil
}

// ServerVersions are the major.minor.micro.rev tor version numbers from
// the server-versions line of a consensus file, oldest first.
var ServerVersions = []string{
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

// ServerVersionsLine renders the consensus "server-versions" line for
// ServerVersions.
func ServerVersionsLine() string {
	return "server-versions " + strings.Join(ServerVersions, ",")
}

// SortVersions returns raws ordered oldest to newest under the version
// ordering of the named package. Versions that cannot be compared (a
// label mismatch inside the core, which cannot happen here since every
// entry shares pkg) surface as an error rather than a silent misorder.
func SortVersions(pkg string, raws []string) ([]string, error) {
	type entry struct {
		raw string
		v   version.Version
	}
	entries := make([]entry, len(raws))
	for i, raw := range raws {
		entries[i] = entry{raw: raw, v: version.New(raw, pkg)}
	}

	var sortErr error
	sort.SliceStable(entries, func(i, j int) bool {
		less, err := entries[i].v.Less(entries[j].v)
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return less
	})
	if sortErr != nil {
		return nil, sortErr
	}

	sorted := make([]string, len(entries))
	for i, e := range entries {
		sorted[i] = e.raw
	}
	return sorted, nil
}
