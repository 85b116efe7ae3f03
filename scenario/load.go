package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadProfile reads a single scenario profile from a JSON or YAML file,
// chosen by extension.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	var profile Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &profile); err != nil {
			return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(raw, &profile); err != nil {
			return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
		}
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	profile.EnsureID()
	return &profile, nil
}

// Library maps codenames to profiles.
type Library struct {
	profiles map[string]*Profile
}

// NewLibrary builds a library from parsed profiles. Duplicate codenames are
// rejected so benchmark tags stay unambiguous.
func NewLibrary(profiles ...*Profile) (*Library, error) {
	lib := &Library{profiles: make(map[string]*Profile, len(profiles))}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, exists := lib.profiles[p.Codename]; exists {
			return nil, fmt.Errorf("scenario: duplicate codename %q", p.Codename)
		}
		p.EnsureID()
		lib.profiles[p.Codename] = p
	}
	return lib, nil
}

// LoadLibrary reads every .json/.yaml/.yml profile under dir.
func LoadLibrary(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario: read dir %s: %w", dir, err)
	}
	var profiles []*Profile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			p, err := LoadProfile(filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			profiles = append(profiles, p)
		}
	}
	return NewLibrary(profiles...)
}

// Get looks a profile up by codename.
func (l *Library) Get(codename string) (*Profile, bool) {
	p, ok := l.profiles[codename]
	return p, ok
}

// Codenames lists the registered codenames.
func (l *Library) Codenames() []string {
	out := make([]string, 0, len(l.profiles))
	for name := range l.profiles {
		out = append(out, name)
	}
	return out
}
