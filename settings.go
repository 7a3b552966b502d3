package bvr

// Settings are the keys that may be set at every tier of resolution:
// platform defaults, the descriptor and each variant. A nil field is
// unset at that tier.
type Settings struct {
	MinPlatformVersion      *Version `json:"minPlatformVersion,omitempty" yaml:"minPlatformVersion,omitempty"`
	TargetPlatformVersion   *Version `json:"targetPlatformVersion,omitempty" yaml:"targetPlatformVersion,omitempty"`
	CompileToolchainVersion *Version `json:"compileToolchainVersion,omitempty" yaml:"compileToolchainVersion,omitempty"`
	NDKVersion              *string  `json:"ndkVersion,omitempty" yaml:"ndkVersion,omitempty"`
	SourceCompatibility     *Version `json:"sourceCompatibility,omitempty" yaml:"sourceCompatibility,omitempty"`
	TargetCompatibility     *Version `json:"targetCompatibility,omitempty" yaml:"targetCompatibility,omitempty"`
	JVMTarget               *Version `json:"jvmTarget,omitempty" yaml:"jvmTarget,omitempty"`
	Minify                  *bool    `json:"minify,omitempty" yaml:"minify,omitempty"`
	ShrinkResources         *bool    `json:"shrinkResources,omitempty" yaml:"shrinkResources,omitempty"`
	Debuggable              *bool    `json:"debuggable,omitempty" yaml:"debuggable,omitempty"`
	ApplicationIDSuffix     *string  `json:"applicationIdSuffix,omitempty" yaml:"applicationIdSuffix,omitempty"`
	VersionNameSuffix       *string  `json:"versionNameSuffix,omitempty" yaml:"versionNameSuffix,omitempty"`
	SigningConfig           *string  `json:"signingConfig,omitempty" yaml:"signingConfig,omitempty"`
}

// Overlay returns a copy of s with every field that is set in o
// taking o's value.
func (s Settings) Overlay(o Settings) Settings {
	s.MinPlatformVersion = overlay(s.MinPlatformVersion, o.MinPlatformVersion)
	s.TargetPlatformVersion = overlay(s.TargetPlatformVersion, o.TargetPlatformVersion)
	s.CompileToolchainVersion = overlay(s.CompileToolchainVersion, o.CompileToolchainVersion)
	s.NDKVersion = overlay(s.NDKVersion, o.NDKVersion)
	s.SourceCompatibility = overlay(s.SourceCompatibility, o.SourceCompatibility)
	s.TargetCompatibility = overlay(s.TargetCompatibility, o.TargetCompatibility)
	s.JVMTarget = overlay(s.JVMTarget, o.JVMTarget)
	s.Minify = overlay(s.Minify, o.Minify)
	s.ShrinkResources = overlay(s.ShrinkResources, o.ShrinkResources)
	s.Debuggable = overlay(s.Debuggable, o.Debuggable)
	s.ApplicationIDSuffix = overlay(s.ApplicationIDSuffix, o.ApplicationIDSuffix)
	s.VersionNameSuffix = overlay(s.VersionNameSuffix, o.VersionNameSuffix)
	s.SigningConfig = overlay(s.SigningConfig, o.SigningConfig)
	return s
}

// Overlay merges layers in order. Later layers win on keys they set.
func Overlay(layers ...Settings) Settings {
	merged := Settings{}
	for _, layer := range layers {
		merged = merged.Overlay(layer)
	}

	return merged
}

// overlay copies the value so that merged Settings never alias their inputs.
func overlay[T any](base, over *T) *T {
	if over != nil {
		return Ptr(*over)
	} else if base != nil {
		return Ptr(*base)
	}

	return nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

func deref[T any](p *T) T {
	var v T
	if p != nil {
		v = *p
	}

	return v
}
