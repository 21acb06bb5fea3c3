package descriptor

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// pemLineLength is the column at which PEM body lines wrap.
const pemLineLength = 64

// EncodeBlock renders body as a base64 block between the begin and end
// markers, wrapped at 64 columns the way Tor and OpenSSL emit PEM
// objects. The returned block ends with a newline.
func EncodeBlock(begin, end Marker, body []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(body)

	var b bytes.Buffer
	b.WriteString(string(begin))
	b.WriteByte('\n')
	for len(enc) > pemLineLength {
		b.WriteString(enc[:pemLineLength])
		b.WriteByte('\n')
		enc = enc[pemLineLength:]
	}
	if enc != "" {
		b.WriteString(enc)
		b.WriteByte('\n')
	}
	b.WriteString(string(end))
	b.WriteByte('\n')
	return b.Bytes()
}

// Base64Digest returns the base64 form of a digest as it appears on a
// network-status "r" line: single line, "=" padding stripped.
func Base64Digest(digest []byte) string {
	return strings.TrimRight(base64.StdEncoding.EncodeToString(digest), "=")
}

// Fingerprint renders a digest as upper-case hex in space-separated
// 4-character groups, the form used on a router "fingerprint" line.
func Fingerprint(digest []byte) string {
	h := strings.ToUpper(hex.EncodeToString(digest))

	var groups []string
	for len(h) > 4 {
		groups = append(groups, h[:4])
		h = h[4:]
	}
	if h != "" {
		groups = append(groups, h)
	}
	return strings.Join(groups, " ")
}
