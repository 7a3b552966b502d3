package bvr

import (
	"math"
	"slices"
	"strings"

	"github.com/frantjc/bvr/internal/bvrregexp"
	xslice "github.com/frantjc/x/slice"
)

const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// Platform describes the constraints and defaults of a target platform.
type Platform struct {
	Name string
	// Defaults is the bottom tier of every resolution.
	Defaults Settings
	// Variants are declared implicitly for every descriptor. A variant
	// of the same name declared by the descriptor is layered on top.
	Variants []BuildVariant
	// SigningConfigs are declared implicitly for every descriptor.
	SigningConfigs []SigningConfig
	// Plugins can be referenced without a pluginCatalog entry.
	Plugins []string
	// MaxVersionCode is the largest accepted versionCode.
	MaxVersionCode int
	// IdentifierGrammar describes IsIdentifier for error messages.
	IdentifierGrammar string

	isIdentifier func(string) bool
}

// IsIdentifier reports whether name is a valid package identifier
// on the platform.
func (p *Platform) IsIdentifier(name string) bool {
	return p.isIdentifier(name)
}

var (
	androidPlatform = &Platform{
		Name: PlatformAndroid,
		Defaults: Settings{
			MinPlatformVersion:      Ptr(Version("21")),
			TargetPlatformVersion:   Ptr(Version("36")),
			CompileToolchainVersion: Ptr(Version("36")),
			SourceCompatibility:     Ptr(Version("1.8")),
			TargetCompatibility:     Ptr(Version("1.8")),
			JVMTarget:               Ptr(Version("1.8")),
			Minify:                  Ptr(false),
			ShrinkResources:         Ptr(false),
			Debuggable:              Ptr(false),
		},
		Variants: []BuildVariant{
			{
				Name: "debug",
				Settings: Settings{
					Debuggable:    Ptr(true),
					SigningConfig: Ptr("debug"),
				},
			},
			{
				Name: "release",
			},
		},
		SigningConfigs: []SigningConfig{
			{
				Name:          "debug",
				StoreFile:     "~/.android/debug.keystore",
				StorePassword: "android",
				StoreType:     "JKS",
				KeyAlias:      "androiddebugkey",
				KeyPassword:   "android",
			},
		},
		Plugins: []string{
			"com.android.application",
			"com.android.library",
			"kotlin-android",
			"org.jetbrains.kotlin.android",
			"dev.flutter.flutter-gradle-plugin",
		},
		MaxVersionCode:    2100000000,
		IdentifierGrammar: "Java package name with at least two segments, e.g. com.example.app",
		isIdentifier:      bvrregexp.IsAndroidPackage,
	}

	iosPlatform = &Platform{
		Name: PlatformIOS,
		Defaults: Settings{
			MinPlatformVersion:      Ptr(Version("12.0")),
			TargetPlatformVersion:   Ptr(Version("18.0")),
			CompileToolchainVersion: Ptr(Version("18.0")),
			Minify:                  Ptr(false),
			ShrinkResources:         Ptr(false),
			Debuggable:              Ptr(false),
		},
		Variants: []BuildVariant{
			{
				Name: "debug",
				Settings: Settings{
					Debuggable: Ptr(true),
				},
			},
			{
				Name: "release",
			},
		},
		MaxVersionCode:    math.MaxInt32,
		IdentifierGrammar: "reverse-DNS bundle identifier of letters, digits and hyphens, e.g. com.example.app",
		isIdentifier:      bvrregexp.IsBundleIdentifier,
	}

	platforms = []*Platform{androidPlatform, iosPlatform}
)

// PlatformFor returns a copy of the Platform with the given name.
// An empty name means Android. Changes to the copy do not affect
// resolution.
func PlatformFor(name string) (*Platform, bool) {
	platform, ok := platformFor(name)
	if !ok {
		return nil, false
	}

	return platform.clone(), true
}

func platformFor(name string) (*Platform, bool) {
	if name == "" {
		return androidPlatform, true
	}

	for _, platform := range platforms {
		if strings.EqualFold(platform.Name, name) {
			return platform, true
		}
	}

	return nil, false
}

func (p *Platform) clone() *Platform {
	c := *p
	c.Defaults = Overlay(p.Defaults)
	c.Variants = make([]BuildVariant, len(p.Variants))
	for i, v := range p.Variants {
		c.Variants[i] = BuildVariant{
			Name:     v.Name,
			Extends:  slices.Clone(v.Extends),
			Settings: Overlay(v.Settings),
		}
	}
	c.SigningConfigs = slices.Clone(p.SigningConfigs)
	c.Plugins = slices.Clone(p.Plugins)
	return &c
}

func (p *Platform) variant(name string) (*BuildVariant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Name == name {
			return &p.Variants[i], true
		}
	}

	return nil, false
}

func (p *Platform) builtinPlugin(id string) bool {
	return xslice.Includes(p.Plugins, id)
}
