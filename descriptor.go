package bvr

// BuildDescriptor declares one application's build inputs. Its inline
// Settings are the descriptor tier of resolution.
type BuildDescriptor struct {
	Platform       string            `json:"platform,omitempty" yaml:"platform,omitempty"`
	Namespace      string            `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	ApplicationID  string            `json:"applicationId,omitempty" yaml:"applicationId,omitempty"`
	VersionCode    int               `json:"versionCode" yaml:"versionCode"`
	VersionName    string            `json:"versionName" yaml:"versionName"`
	Plugins        []string          `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	PluginCatalog  []PluginReference `json:"pluginCatalog,omitempty" yaml:"pluginCatalog,omitempty"`
	SourceRoot     string            `json:"sourceRoot,omitempty" yaml:"sourceRoot,omitempty"`
	SigningConfigs []SigningConfig   `json:"signingConfigs,omitempty" yaml:"signingConfigs,omitempty"`
	Variants       []BuildVariant    `json:"variants,omitempty" yaml:"variants,omitempty"`
	Settings       `json:",inline" yaml:",inline"`
}

// BuildVariant is a named build profile such as debug or release.
// Extends names other variants whose settings are layered beneath
// this one's, in order.
type BuildVariant struct {
	Name     string   `json:"name" yaml:"name"`
	Extends  []string `json:"extends,omitempty" yaml:"extends,omitempty"`
	Settings `json:",inline" yaml:",inline"`
}

// SigningConfig is a named reference to signing credentials. Variants
// refer to it by Name, and the plan carries a copy.
type SigningConfig struct {
	Name                string `json:"name" yaml:"name"`
	StoreFile           string `json:"storeFile,omitempty" yaml:"storeFile,omitempty"`
	StorePassword       string `json:"storePassword,omitempty" yaml:"storePassword,omitempty"`
	StoreType           string `json:"storeType,omitempty" yaml:"storeType,omitempty"`
	KeyAlias            string `json:"keyAlias,omitempty" yaml:"keyAlias,omitempty"`
	KeyPassword         string `json:"keyPassword,omitempty" yaml:"keyPassword,omitempty"`
	DevelopmentTeam     string `json:"developmentTeam,omitempty" yaml:"developmentTeam,omitempty"`
	CodeSignIdentity    string `json:"codeSignIdentity,omitempty" yaml:"codeSignIdentity,omitempty"`
	ProvisioningProfile string `json:"provisioningProfile,omitempty" yaml:"provisioningProfile,omitempty"`
}

// PluginReference declares a plugin that the platform does not
// provide itself.
type PluginReference struct {
	ID      string `json:"id" yaml:"id"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// LookupVariant returns the variant declared in d with the given name.
func (d *BuildDescriptor) LookupVariant(name string) (*BuildVariant, bool) {
	for i := range d.Variants {
		if d.Variants[i].Name == name {
			return &d.Variants[i], true
		}
	}

	return nil, false
}

// LookupSigningConfig returns the signing config declared in d with the given
// name, falling back to the platform's implicit ones.
func (d *BuildDescriptor) LookupSigningConfig(name string) (*SigningConfig, bool) {
	for i := range d.SigningConfigs {
		if d.SigningConfigs[i].Name == name {
			return &d.SigningConfigs[i], true
		}
	}

	if platform, ok := platformFor(d.Platform); ok {
		for i := range platform.SigningConfigs {
			if platform.SigningConfigs[i].Name == name {
				sc := platform.SigningConfigs[i]
				return &sc, true
			}
		}
	}

	return nil, false
}
