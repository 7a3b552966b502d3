package descriptor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/frantjc/bvr"
	"gopkg.in/yaml.v3"
)

// Defaults are user-level Settings layered on top of each platform's
// own defaults.
type Defaults struct {
	Android bvr.Settings `yaml:"android,omitempty"`
	IOS     bvr.Settings `yaml:"ios,omitempty"`
}

// DefaultsPath is where LoadDefaults looks when given no name.
//
//	Linux: $XDG_CONFIG_HOME/bvr/defaults.yaml or ~/.config/bvr/defaults.yaml
//	macOS: ~/Library/Application Support/bvr/defaults.yaml
func DefaultsPath() string {
	return filepath.Join(xdg.ConfigHome, "bvr", "defaults.yaml")
}

// LoadDefaults reads the Defaults at name, or at DefaultsPath if name is
// empty. A missing file is not an error; nil is returned.
func LoadDefaults(name string) (*Defaults, error) {
	if name == "" {
		name = DefaultsPath()
	}

	f, err := os.Open(name)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	defaults := &Defaults{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(defaults); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode defaults %s: %w", name, err)
	}

	return defaults, nil
}

// ResolveOpts returns the bvr.ResolveOpts that apply d to descriptors
// targeting platform. Safe to call on a nil *Defaults.
func (d *Defaults) ResolveOpts(platform string) []bvr.ResolveOpt {
	if d == nil {
		return nil
	}

	switch {
	case platform == "" || strings.EqualFold(platform, bvr.PlatformAndroid):
		return []bvr.ResolveOpt{bvr.WithDefaults(d.Android)}
	case strings.EqualFold(platform, bvr.PlatformIOS):
		return []bvr.ResolveOpt{bvr.WithDefaults(d.IOS)}
	}

	return nil
}
