package extract

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tripextract/internal/domain"
)

//go:embed profiles.yaml
var defaultProfilesYAML []byte

// NestedReviews selects review bodies nested inside review cards.
type NestedReviews struct {
	Outer string `yaml:"outer"`
	Inner string `yaml:"inner"`
}

// Profile is the selector configuration for one category.
type Profile struct {
	Category      domain.Category `yaml:"-"`
	Description   string          `yaml:"description"`
	Reviews       string          `yaml:"reviews"`
	NestedReviews *NestedReviews  `yaml:"nested_reviews"`
	Hours         string          `yaml:"hours"`
	FixedHours    []string        `yaml:"fixed_hours"`
	Duration      bool            `yaml:"duration"`
	NearbyHotels  bool            `yaml:"nearby_hotels"`
}

type profilesFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// DefaultProfiles returns the built-in profiles.
func DefaultProfiles() (map[domain.Category]Profile, error) {
	return parseProfiles(defaultProfilesYAML, nil)
}

// LoadProfiles returns the built-in profiles, with any category defined in the
// YAML file at path replacing its default. An empty path yields the defaults.
func LoadProfiles(path string) (map[domain.Category]Profile, error) {
	base, err := DefaultProfiles()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}
	return parseProfiles(data, base)
}

func parseProfiles(data []byte, base map[domain.Category]Profile) (map[domain.Category]Profile, error) {
	var pf profilesFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	out := make(map[domain.Category]Profile, len(base)+len(pf.Profiles))
	for c, p := range base {
		out[c] = p
	}
	for key, p := range pf.Profiles {
		c, err := domain.ParseCategory(key)
		if err != nil {
			return nil, err
		}
		if n := len(p.FixedHours); n != 0 && n != 2 {
			return nil, fmt.Errorf("profile %s: fixed_hours needs exactly 2 values, got %d", c, n)
		}
		p.Category = c
		out[c] = p
	}
	return out, nil
}

// classSelector turns a class attribute value ("biGQs _P fiohW") into a
// compound CSS class selector (".biGQs._P.fiohW").
func classSelector(classes string) string {
	fields := strings.Fields(classes)
	if len(fields) == 0 {
		return ""
	}
	return "." + strings.Join(fields, ".")
}
