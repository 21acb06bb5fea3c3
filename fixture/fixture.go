// Package fixture assembles generated descriptor documents into a
// bundle: an in-memory set of named documents plus a manifest listing
// their SHA256 digests, optionally clearsigned with an OpenPGP key.
package fixture

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
)

// Info holds the metadata written at the top of the bundle manifest.
type Info struct {
	Origin      string `json:"origin" yaml:"origin"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
}

// Doc is one named fixture document.
type Doc struct {
	Name    string
	Content []byte
}

// Set is an in-memory collection of fixture documents and the bundle
// metadata computed from them. Documents keep their insertion order.
type Set struct {
	docs  map[string]*Doc
	names []string

	ManifestContent         []byte
	SignedManifestContent   []byte
	PublicKeyContent        []byte
	PublicKeyContentArmored []byte
}

// NewSet creates an empty fixture set.
func NewSet() *Set {
	return &Set{docs: make(map[string]*Doc)}
}

// Add inserts a named document into the set. It returns an error when a
// document with the same name already exists.
func (s *Set) Add(name string, content []byte) error {
	if name == "" {
		return fmt.Errorf("document name is empty")
	}
	if _, exists := s.docs[name]; exists {
		return fmt.Errorf("duplicate document: %s", name)
	}
	s.docs[name] = &Doc{Name: name, Content: content}
	s.names = append(s.names, name)
	return nil
}

// Docs returns the documents in insertion order.
func (s *Set) Docs() []*Doc {
	out := make([]*Doc, len(s.names))
	for i, name := range s.names {
		out[i] = s.docs[name]
	}
	return out
}

// ComputeManifest generates the bundle manifest: the Info fields, a
// generation date, and one " <sha256> <size> <name>" line per document.
// When gpgKey is a non-empty ASCII-armored private key the manifest is
// also clearsigned and the public key exported in binary and armored
// form.
func (s *Set) ComputeManifest(info Info, gpgKey string) error {
	var b bytes.Buffer
	writeField := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", key, value)
		}
	}

	writeField("Origin", info.Origin)
	writeField("Label", info.Label)
	writeField("Description", info.Description)
	writeField("Date", time.Now().UTC().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "SHA256:\n")

	for _, name := range s.names {
		doc := s.docs[name]
		h := sha256.Sum256(doc.Content)
		fmt.Fprintf(&b, " %x %d %s\n", h, len(doc.Content), doc.Name)
	}
	s.ManifestContent = b.Bytes()

	if gpgKey != "" {
		signed, err := signBytes(s.ManifestContent, gpgKey)
		if err != nil {
			return fmt.Errorf("signing manifest: %w", err)
		}
		s.SignedManifestContent = signed

		pubKey, err := extractPublicKey(gpgKey, false)
		if err != nil {
			return fmt.Errorf("extracting public key: %w", err)
		}
		s.PublicKeyContent = pubKey

		pubKeyArmored, err := extractPublicKey(gpgKey, true)
		if err != nil {
			return fmt.Errorf("extracting armored public key: %w", err)
		}
		s.PublicKeyContentArmored = pubKeyArmored
	}
	return nil
}

// countingWriter wraps an io.Writer and counts the bytes written, so
// WriteTo can report its total.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo emits the bundle as a tar.gz stream: every document, then the
// manifest and, when present, its signed form and the public keys. It
// satisfies io.WriterTo.
func (s *Set) WriteTo(w io.Writer) (int64, error) {
	if len(s.ManifestContent) == 0 {
		return 0, fmt.Errorf("manifest not computed")
	}

	cw := &countingWriter{w: w}
	gzw := gzip.NewWriter(cw)
	defer gzw.Close()
	tw := tar.NewWriter(gzw)

	addFile := func(name string, content []byte) error {
		header := &tar.Header{
			Name:    name,
			Size:    int64(len(content)),
			Mode:    0644,
			ModTime: time.Now(),
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("writing header for %s: %w", name, err)
		}
		_, err := tw.Write(content)
		return err
	}

	for _, name := range s.names {
		if err := addFile(name, s.docs[name].Content); err != nil {
			return cw.n, err
		}
	}

	if err := addFile("manifest", s.ManifestContent); err != nil {
		return cw.n, err
	}
	if len(s.SignedManifestContent) > 0 {
		if err := addFile("manifest.asc", s.SignedManifestContent); err != nil {
			return cw.n, err
		}
	}
	if len(s.PublicKeyContent) > 0 {
		if err := addFile("public.gpg", s.PublicKeyContent); err != nil {
			return cw.n, err
		}
	}
	if len(s.PublicKeyContentArmored) > 0 {
		if err := addFile("public.asc", s.PublicKeyContentArmored); err != nil {
			return cw.n, err
		}
	}

	if err := tw.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// SaveTo writes the bundle files to a local directory.
func (s *Set) SaveTo(dir string) error {
	if len(s.ManifestContent) == 0 {
		return fmt.Errorf("manifest not computed")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, name := range s.names {
		if err := os.WriteFile(filepath.Join(dir, name), s.docs[name].Content, 0644); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest"), s.ManifestContent, 0644); err != nil {
		return err
	}
	if len(s.SignedManifestContent) > 0 {
		if err := os.WriteFile(filepath.Join(dir, "manifest.asc"), s.SignedManifestContent, 0644); err != nil {
			return err
		}
	}
	if len(s.PublicKeyContent) > 0 {
		if err := os.WriteFile(filepath.Join(dir, "public.gpg"), s.PublicKeyContent, 0644); err != nil {
			return err
		}
	}
	if len(s.PublicKeyContentArmored) > 0 {
		if err := os.WriteFile(filepath.Join(dir, "public.asc"), s.PublicKeyContentArmored, 0644); err != nil {
			return err
		}
	}
	return nil
}

// signBytes clearsigns the input using the provided ASCII-armored PGP
// private key.
func signBytes(input []byte, key string) ([]byte, error) {
	signer, err := readSigner(key)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	w, err := clearsign.Encode(&out, signer.PrivateKey, nil)
	if err != nil {
		return nil, err
	}
	w.Write(input)
	w.Close()
	return out.Bytes(), nil
}

// extractPublicKey extracts the public key from an ASCII-armored PGP
// private key, armored or binary.
func extractPublicKey(key string, armored bool) ([]byte, error) {
	signer, err := readSigner(key)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if armored {
		w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
		if err != nil {
			return nil, err
		}
		if err := signer.Serialize(w); err != nil {
			return nil, err
		}
		w.Close()
	} else {
		if err := signer.Serialize(&buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func readSigner(key string) (*openpgp.Entity, error) {
	entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(key))
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if e.PrivateKey != nil {
			return e, nil
		}
	}
	return nil, fmt.Errorf("no private key found")
}
