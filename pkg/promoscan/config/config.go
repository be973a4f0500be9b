package config

import (
	"embed"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/promoscan/pkg/promoscan/internalerr"
)

//go:embed defaults/*.yaml
var defaults embed.FS

// Default data file names inside the embedded defaults directory.
const (
	DefaultTaxonomyFile  = "defaults/taxonomy.yaml"
	DefaultBlacklistFile = "defaults/blacklist.yaml"
	DefaultNoiseFile     = "defaults/noise.yaml"
)

// Taxonomy represents the category configuration. Categories are an ordered
// list because classification is first-match-wins.
type Taxonomy struct {
	Fallback   string     `yaml:"fallback"`
	Categories []Category `yaml:"categories"`
}

// Category is one named keyword group.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Blacklist represents the stop-term list used by the quality filter
type Blacklist struct {
	Terms []string `yaml:"terms"`
}

// Noise holds extra noise-line regular expressions
type Noise struct {
	Patterns []string `yaml:"patterns"`
}

// LoadTaxonomy loads taxonomy from a YAML file
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read taxonomy %s", path)
	}
	return parseTaxonomy(data)
}

// LoadBlacklist loads blacklist terms from a YAML file
func LoadBlacklist(path string) (*Blacklist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read blacklist %s", path)
	}
	return parseBlacklist(data)
}

// LoadNoise loads noise patterns from a YAML file
func LoadNoise(path string) (*Noise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read noise patterns %s", path)
	}
	return parseNoise(data)
}

// DefaultTaxonomy returns the embedded taxonomy.
func DefaultTaxonomy() (*Taxonomy, error) {
	data, err := defaults.ReadFile(DefaultTaxonomyFile)
	if err != nil {
		return nil, eris.Wrap(err, "config: read embedded taxonomy")
	}
	return parseTaxonomy(data)
}

// DefaultBlacklist returns the embedded blacklist.
func DefaultBlacklist() (*Blacklist, error) {
	data, err := defaults.ReadFile(DefaultBlacklistFile)
	if err != nil {
		return nil, eris.Wrap(err, "config: read embedded blacklist")
	}
	return parseBlacklist(data)
}

// DefaultNoise returns the embedded retailer noise patterns.
func DefaultNoise() (*Noise, error) {
	data, err := defaults.ReadFile(DefaultNoiseFile)
	if err != nil {
		return nil, eris.Wrap(err, "config: read embedded noise patterns")
	}
	return parseNoise(data)
}

func parseTaxonomy(data []byte) (*Taxonomy, error) {
	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, eris.Wrapf(internalerr.ErrInvalidConfig, "config: parse taxonomy: %v", err)
	}
	for i, c := range tax.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, eris.Wrapf(internalerr.ErrInvalidConfig, "config: taxonomy category #%d has no name", i+1)
		}
	}
	return &tax, nil
}

func parseBlacklist(data []byte) (*Blacklist, error) {
	var bl Blacklist
	if err := yaml.Unmarshal(data, &bl); err != nil {
		return nil, eris.Wrapf(internalerr.ErrInvalidConfig, "config: parse blacklist: %v", err)
	}
	return &bl, nil
}

func parseNoise(data []byte) (*Noise, error) {
	var n Noise
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, eris.Wrapf(internalerr.ErrInvalidConfig, "config: parse noise patterns: %v", err)
	}
	return &n, nil
}

// Compile turns the noise patterns into regular expressions. An invalid
// pattern is a configuration error.
func (n *Noise) Compile() ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(n.Patterns))
	for _, p := range n.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, eris.Wrapf(internalerr.ErrInvalidConfig, "config: noise pattern %q: %v", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
