package descriptor

import (
	"fmt"
	"regexp"

	"github.com/frantjc/bvr"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

type hclDescriptor struct {
	Platform       *string            `hcl:"platform,optional"`
	Namespace      *string            `hcl:"namespace,optional"`
	ApplicationID  *string            `hcl:"application_id,optional"`
	VersionCode    int                `hcl:"version_code"`
	VersionName    string             `hcl:"version_name"`
	Plugins        []string           `hcl:"plugins,optional"`
	SourceRoot     *string            `hcl:"source_root,optional"`
	PluginCatalog  []hclPlugin        `hcl:"plugin,block"`
	SigningConfigs []hclSigningConfig `hcl:"signing_config,block"`
	Variants       []hclVariant       `hcl:"variant,block"`
	Settings       hclSettings        `hcl:",remain"`
}

type hclPlugin struct {
	ID      string  `hcl:"id,label"`
	Version *string `hcl:"version,optional"`
}

type hclSigningConfig struct {
	Name                string  `hcl:"name,label"`
	StoreFile           *string `hcl:"store_file,optional"`
	StorePassword       *string `hcl:"store_password,optional"`
	StoreType           *string `hcl:"store_type,optional"`
	KeyAlias            *string `hcl:"key_alias,optional"`
	KeyPassword         *string `hcl:"key_password,optional"`
	DevelopmentTeam     *string `hcl:"development_team,optional"`
	CodeSignIdentity    *string `hcl:"code_sign_identity,optional"`
	ProvisioningProfile *string `hcl:"provisioning_profile,optional"`
}

type hclVariant struct {
	Name     string      `hcl:"name,label"`
	Extends  []string    `hcl:"extends,optional"`
	Settings hclSettings `hcl:",remain"`
}

// Versions are kept as expressions so that a number literal such as
// `min_platform_version = 17.10` keeps its source spelling instead of
// round-tripping through a float to "17.1".
type hclSettings struct {
	MinPlatformVersion      hcl.Expression `hcl:"min_platform_version,optional"`
	TargetPlatformVersion   hcl.Expression `hcl:"target_platform_version,optional"`
	CompileToolchainVersion hcl.Expression `hcl:"compile_toolchain_version,optional"`
	NDKVersion              hcl.Expression `hcl:"ndk_version,optional"`
	SourceCompatibility     hcl.Expression `hcl:"source_compatibility,optional"`
	TargetCompatibility     hcl.Expression `hcl:"target_compatibility,optional"`
	JVMTarget               hcl.Expression `hcl:"jvm_target,optional"`
	Minify                  *bool          `hcl:"minify,optional"`
	ShrinkResources         *bool          `hcl:"shrink_resources,optional"`
	Debuggable              *bool          `hcl:"debuggable,optional"`
	ApplicationIDSuffix     *string        `hcl:"application_id_suffix,optional"`
	VersionNameSuffix       *string        `hcl:"version_name_suffix,optional"`
	SigningConfig           *string        `hcl:"signing_config,optional"`
}

var envName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func evalContext(env map[string]string) *hcl.EvalContext {
	vars := map[string]cty.Value{}
	for k, v := range env {
		if envName.MatchString(k) {
			vars[k] = cty.StringVal(v)
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func decodeHCL(src []byte, filename string, env map[string]string) (*bvr.BuildDescriptor, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse hcl %s: %s", filename, diags.Error())
	}

	var (
		ctx = evalContext(env)
		h   = &hclDescriptor{}
	)
	if diags = gohcl.DecodeBody(file.Body, ctx, h); diags.HasErrors() {
		return nil, fmt.Errorf("decode hcl %s: %s", filename, diags.Error())
	}

	settings, diags := h.Settings.settings(src, ctx)

	d := &bvr.BuildDescriptor{
		Platform:      deref(h.Platform),
		Namespace:     deref(h.Namespace),
		ApplicationID: deref(h.ApplicationID),
		VersionCode:   h.VersionCode,
		VersionName:   h.VersionName,
		Plugins:       h.Plugins,
		SourceRoot:    deref(h.SourceRoot),
		Settings:      settings,
	}

	for _, p := range h.PluginCatalog {
		d.PluginCatalog = append(d.PluginCatalog, bvr.PluginReference{
			ID:      p.ID,
			Version: deref(p.Version),
		})
	}

	for _, s := range h.SigningConfigs {
		d.SigningConfigs = append(d.SigningConfigs, bvr.SigningConfig{
			Name:                s.Name,
			StoreFile:           deref(s.StoreFile),
			StorePassword:       deref(s.StorePassword),
			StoreType:           deref(s.StoreType),
			KeyAlias:            deref(s.KeyAlias),
			KeyPassword:         deref(s.KeyPassword),
			DevelopmentTeam:     deref(s.DevelopmentTeam),
			CodeSignIdentity:    deref(s.CodeSignIdentity),
			ProvisioningProfile: deref(s.ProvisioningProfile),
		})
	}

	for _, v := range h.Variants {
		settings, vdiags := v.Settings.settings(src, ctx)
		diags = append(diags, vdiags...)

		d.Variants = append(d.Variants, bvr.BuildVariant{
			Name:     v.Name,
			Extends:  v.Extends,
			Settings: settings,
		})
	}

	if diags.HasErrors() {
		return nil, fmt.Errorf("decode hcl %s: %s", filename, diags.Error())
	}

	return d, nil
}

func (h hclSettings) settings(src []byte, ctx *hcl.EvalContext) (bvr.Settings, hcl.Diagnostics) {
	var (
		diags   hcl.Diagnostics
		version = func(expr hcl.Expression) *bvr.Version {
			s, d := versionString(expr, src, ctx)
			diags = append(diags, d...)
			if s == nil {
				return nil
			}

			return bvr.Ptr(bvr.Version(*s))
		}
		ndkVersion, ndkDiags = versionString(h.NDKVersion, src, ctx)
	)
	diags = append(diags, ndkDiags...)

	return bvr.Settings{
		MinPlatformVersion:      version(h.MinPlatformVersion),
		TargetPlatformVersion:   version(h.TargetPlatformVersion),
		CompileToolchainVersion: version(h.CompileToolchainVersion),
		NDKVersion:              ndkVersion,
		SourceCompatibility:     version(h.SourceCompatibility),
		TargetCompatibility:     version(h.TargetCompatibility),
		JVMTarget:               version(h.JVMTarget),
		Minify:                  h.Minify,
		ShrinkResources:         h.ShrinkResources,
		Debuggable:              h.Debuggable,
		ApplicationIDSuffix:     h.ApplicationIDSuffix,
		VersionNameSuffix:       h.VersionNameSuffix,
		SigningConfig:           h.SigningConfig,
	}, diags
}

// versionString returns a number literal exactly as written in src and
// evaluates anything else to a string. An unset attribute is nil.
func versionString(expr hcl.Expression, src []byte, ctx *hcl.EvalContext) (*string, hcl.Diagnostics) {
	if expr == nil {
		return nil, nil
	}

	if lit, ok := expr.(*hclsyntax.LiteralValueExpr); ok && lit.Val.Type() == cty.Number {
		s := string(expr.Range().SliceBytes(src))
		return &s, nil
	}

	val, diags := expr.Value(ctx)
	if diags.HasErrors() || val.IsNull() {
		return nil, diags
	}

	if val.Type() != cty.String {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid version",
			Detail:   "A version must be a number literal or a string, e.g. 34 or \"17.0\".",
			Subject:  expr.Range().Ptr(),
		})
	}

	s := val.AsString()
	return &s, diags
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
