package grammar

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var defaultProfileData []byte

// Profile holds the name tables that evolve with CSS and are therefore data, not code.
type Profile struct {
	MediaTypes       []string `yaml:"media-types"`
	RangeFeatures    []string `yaml:"range-features"`
	DiscreteFeatures []string `yaml:"discrete-features"`
	CasePreserving   []string `yaml:"case-preserving-properties"`

	mediaTypes     map[string]bool
	rangeFeatures  map[string]bool
	features       map[string]bool
	casePreserving map[string]bool
}

var (
	defaultProfileOnce sync.Once
	defaultProfile     *Profile
)

// DefaultProfile returns the embedded profile. It is shared and must not be modified.
func DefaultProfile() *Profile {
	defaultProfileOnce.Do(func() {
		p, err := ParseProfile(defaultProfileData)
		if err != nil {
			panic("embedded profile: " + err.Error())
		}
		defaultProfile = p
	})
	return defaultProfile
}

// ParseProfile parses a YAML or JSON profile. Lists missing from the document are left empty.
func ParseProfile(b []byte) (*Profile, error) {
	p := &Profile{}
	if err := yaml.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	p.index()
	return p, nil
}

// LoadProfile reads a profile from a .yaml, .yml, .json or .jsonc file.
func LoadProfile(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonc":
		b = jsonc.ToJSON(b)
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("profile: unsupported file extension in %s", path)
	}
	p, err := ParseProfile(b)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profile) index() {
	p.mediaTypes = toSet(p.MediaTypes)
	p.rangeFeatures = toSet(p.RangeFeatures)
	p.features = toSet(p.RangeFeatures, p.DiscreteFeatures)
	p.casePreserving = toSet(p.CasePreserving)
}

func toSet(lists ...[]string) map[string]bool {
	m := map[string]bool{}
	for _, list := range lists {
		for _, s := range list {
			m[strings.ToLower(s)] = true
		}
	}
	return m
}

// IsMediaType returns true for a known media type.
func (p *Profile) IsMediaType(name string) bool {
	return p.mediaTypes[strings.ToLower(name)]
}

// IsMediaFeature returns true for a known media feature, including its legacy min-/max- forms
// for range features.
func (p *Profile) IsMediaFeature(name string) bool {
	name = strings.ToLower(name)
	if p.features[name] {
		return true
	}
	name = trimVendor(name)
	if p.features[name] {
		return true
	}
	if base, ok := TrimRangePrefix(name); ok {
		return p.rangeFeatures[base]
	}
	return false
}

// IsRangeFeature returns true for a known media feature of the range type.
func (p *Profile) IsRangeFeature(name string) bool {
	return p.rangeFeatures[strings.ToLower(name)]
}

// PreservesCase returns true if identifiers in the property's value are case-sensitive.
func (p *Profile) PreservesCase(property string) bool {
	return strings.HasPrefix(property, "--") || p.casePreserving[strings.ToLower(property)]
}

func trimVendor(name string) string {
	if strings.HasPrefix(name, "-") && !strings.HasPrefix(name, "--") {
		if i := strings.IndexByte(name[1:], '-'); i != -1 {
			return name[i+2:]
		}
	}
	return name
}

// TrimRangePrefix strips a legacy min- or max- prefix, also behind a vendor prefix as in -webkit-min-device-pixel-ratio.
func TrimRangePrefix(name string) (string, bool) {
	lower := strings.ToLower(name)
	vendor := ""
	if strings.HasPrefix(lower, "-") {
		if i := strings.IndexByte(lower[1:], '-'); i != -1 {
			vendor, lower = lower[:i+2], lower[i+2:]
		}
	}
	if strings.HasPrefix(lower, "min-") || strings.HasPrefix(lower, "max-") {
		return vendor + lower[4:], true
	}
	return name, false
}
