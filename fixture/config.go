package fixture

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/onionforge/onionforge/netstatus"
)

// Config describes a fixture bundle to synthesize: the bundle metadata
// and the list of bridges to generate network-status documents for.
type Config struct {
	// Out is the directory the bundle is written to.
	Out string `json:"out" yaml:"out"`
	// Defines is a map of variables available to templates in bridge
	// string fields.
	Defines map[string]string `json:"defines" yaml:"defines"`
	// Info is the metadata written to the bundle manifest.
	Info Info `json:"info" yaml:"info"`
	// Bridges lists the synthetic bridges to generate documents for.
	Bridges []Bridge `json:"bridges" yaml:"bridges"`
}

// Bridge describes one synthetic bridge router.
type Bridge struct {
	Nickname string `json:"nickname" yaml:"nickname"`
	IPv4     string `json:"ipv4" yaml:"ipv4"`
	IPv6     string `json:"ipv6" yaml:"ipv6"`
	ORPort   int    `json:"orport" yaml:"orport"`
	DirPort  int    `json:"dirport" yaml:"dirport"`
	Flags    string `json:"flags" yaml:"flags"`
	// Bandwidth is the observed bandwidth in kilobytes per second.
	Bandwidth int64 `json:"bandwidth" yaml:"bandwidth"`
	// Published is the descriptor timestamp in "2006-01-02 15:04:05"
	// form. The generation time is used when empty.
	Published string `json:"published" yaml:"published"`
}

// LoadConfig reads and parses a bundle configuration from the specified
// path. It supports both JSON and YAML formats based on the file
// extension.
func LoadConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var c Config
	if err := unmarshal(path, content, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &c, nil
}

// unmarshal parses JSON or YAML based on file extension, rejecting
// unknown fields either way.
func unmarshal(path string, data []byte, v interface{}) error {
	ext := strings.ToLower(filepath.Ext(path))
	r := bytes.NewReader(data)
	if ext == ".yaml" || ext == ".yml" {
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		return dec.Decode(v)
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// engine handles text template rendering with variable substitution.
type engine struct {
	defines map[string]string
}

func newEngine(defines map[string]string) *engine {
	d := make(map[string]string)
	for k, v := range defines {
		d[k] = v
	}
	return &engine{defines: d}
}

// render executes the provided text as a template using the engine's
// definitions. Text without "{{" is returned as-is.
func (e *engine) render(name, text string) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := t.Execute(&buf, e.defines); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SynthesizeDigest derives a deterministic 20-byte digest for a synthetic
// router from its nickname and the digest's purpose ("identity",
// "descriptor"), so fixtures are reproducible without key generation.
func SynthesizeDigest(nickname, purpose string) []byte {
	h := sha1.Sum([]byte(purpose + ":" + nickname))
	return h[:]
}

// Build synthesizes a network-status document for every configured
// bridge, collects them into a Set and computes the bundle manifest,
// clearsigning it when gpgKey is non-empty. Progress is reported through
// l, which may be nil.
func (c *Config) Build(gpgKey string, l Listener) (*Set, error) {
	if l == nil {
		l = func(fmt.Stringer) {}
	}

	eng := newEngine(c.Defines)
	set := NewSet()

	for i, br := range c.Bridges {
		nickname, err := eng.render(fmt.Sprintf("bridges[%d].nickname", i), br.Nickname)
		if err != nil {
			return nil, fmt.Errorf("rendering nickname: %w", err)
		}
		if nickname == "" {
			return nil, fmt.Errorf("bridges[%d]: nickname is empty", i)
		}

		published := time.Now().UTC()
		if br.Published != "" {
			published, err = time.Parse("2006-01-02 15:04:05", br.Published)
			if err != nil {
				return nil, fmt.Errorf("bridges[%d]: parsing published time: %w", i, err)
			}
		}

		router := netstatus.Router{
			Nickname:         nickname,
			IdentityDigest:   SynthesizeDigest(nickname, "identity"),
			DescriptorDigest: SynthesizeDigest(nickname, "descriptor"),
			Published:        published,
			IPv4:             br.IPv4,
			ORPort:           br.ORPort,
			IPv6:             br.IPv6,
			DirPort:          br.DirPort,
			Flags:            br.Flags,
			Bandwidth:        br.Bandwidth,
		}

		name := nickname + ".netstatus"
		if err := set.Add(name, netstatus.GenerateBridgeNetstatus(router)); err != nil {
			return nil, fmt.Errorf("adding document for %s: %w", nickname, err)
		}
		l(EventDocGenerated{Name: name, Nickname: nickname})
	}

	if err := set.ComputeManifest(c.Info, gpgKey); err != nil {
		return nil, fmt.Errorf("computing manifest: %w", err)
	}
	l(EventManifestComputed{Docs: len(c.Bridges), Signed: gpgKey != ""})

	return set, nil
}
