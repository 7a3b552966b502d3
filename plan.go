package bvr

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
)

// ResolvedPlugin is a plugin reference resolved against the platform's
// builtin plugins and the descriptor's pluginCatalog.
type ResolvedPlugin struct {
	ID      string `json:"id" yaml:"id"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Builtin bool   `json:"builtin,omitempty" yaml:"builtin,omitempty"`
}

// ResolvedBuildPlan is the fully merged, validated configuration of one
// variant, ready for an external build executor. It shares no memory with
// the descriptor it was resolved from and must not be modified.
type ResolvedBuildPlan struct {
	Platform                string           `json:"platform" yaml:"platform"`
	Variant                 string           `json:"variant" yaml:"variant"`
	Namespace               string           `json:"namespace" yaml:"namespace"`
	ApplicationID           string           `json:"applicationId" yaml:"applicationId"`
	VersionCode             int              `json:"versionCode" yaml:"versionCode"`
	VersionName             string           `json:"versionName" yaml:"versionName"`
	MinPlatformVersion      Version          `json:"minPlatformVersion" yaml:"minPlatformVersion"`
	TargetPlatformVersion   Version          `json:"targetPlatformVersion" yaml:"targetPlatformVersion"`
	CompileToolchainVersion Version          `json:"compileToolchainVersion" yaml:"compileToolchainVersion"`
	NDKVersion              string           `json:"ndkVersion,omitempty" yaml:"ndkVersion,omitempty"`
	SourceCompatibility     Version          `json:"sourceCompatibility,omitempty" yaml:"sourceCompatibility,omitempty"`
	TargetCompatibility     Version          `json:"targetCompatibility,omitempty" yaml:"targetCompatibility,omitempty"`
	JVMTarget               Version          `json:"jvmTarget,omitempty" yaml:"jvmTarget,omitempty"`
	Minify                  bool             `json:"minify" yaml:"minify"`
	ShrinkResources         bool             `json:"shrinkResources" yaml:"shrinkResources"`
	Debuggable              bool             `json:"debuggable" yaml:"debuggable"`
	Plugins                 []ResolvedPlugin `json:"plugins" yaml:"plugins"`
	SourceRoot              string           `json:"sourceRoot" yaml:"sourceRoot"`
	SigningConfigRef        string           `json:"signingConfigRef,omitempty" yaml:"signingConfigRef,omitempty"`
	SigningConfig           *SigningConfig   `json:"signingConfig,omitempty" yaml:"signingConfig,omitempty"`
	// Layers names the tiers that were overlaid, bottom first.
	Layers []string `json:"layers" yaml:"layers"`
}

// Signed reports whether the plan references a signing config.
func (p *ResolvedBuildPlan) Signed() bool {
	return p.SigningConfig != nil
}

// Digest returns the sha256 digest of the plan's JSON encoding.
func (p *ResolvedBuildPlan) Digest() (digest.Digest, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	return digest.FromBytes(b), nil
}

var (
	planNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/frantjc/bvr#ResolvedBuildPlan"))
)

// ID returns a name-based UUID derived from the plan's Digest, so
// identical plans always share an ID.
func (p *ResolvedBuildPlan) ID() (uuid.UUID, error) {
	dig, err := p.Digest()
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.NewSHA1(planNamespace, []byte(dig.String())), nil
}
