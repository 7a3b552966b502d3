package bvr

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/frantjc/bvr/internal/bvrregexp"
	xslice "github.com/frantjc/x/slice"
	xstrings "github.com/frantjc/x/strings"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"
)

// ResolveOpts configure Resolve.
type ResolveOpts struct {
	// Defaults is layered on top of the platform's defaults.
	Defaults *Settings
}

type ResolveOpt func(*ResolveOpts)

// WithDefaults overlays defaults onto the platform's own defaults, e.g.
// from a user-level configuration file.
func WithDefaults(defaults Settings) ResolveOpt {
	return func(o *ResolveOpts) {
		o.Defaults = &defaults
	}
}

// Resolve validates d and merges the named variant onto it, returning a
// freshly allocated plan. It performs no I/O. Every violation found is
// reported as a *ConfigError, joined together with errors.Join.
//
// Settings are layered bottom first: platform defaults, opts' defaults,
// the descriptor, the platform's implicit variant of the same name, the
// variants it extends (depth-first, in declaration order) and finally
// the declared variant itself.
func Resolve(d *BuildDescriptor, variantName string, opts ...ResolveOpt) (*ResolvedBuildPlan, error) {
	if d == nil {
		return nil, fmt.Errorf("nil build descriptor")
	}

	o := &ResolveOpts{}
	for _, opt := range opts {
		opt(o)
	}

	platform, ok := platformFor(d.Platform)
	if !ok {
		return nil, configError(ErrUnsupportedPlatform, "platform", d.Platform, "one of "+PlatformAndroid+", "+PlatformIOS)
	}

	r := &resolver{descriptor: d, platform: platform}

	plugins := r.validateDescriptor()

	layers := []layer{{name: "defaults", field: "defaults", settings: platform.Defaults}}
	if o.Defaults != nil {
		layers = append(layers, layer{name: "user-defaults", field: "defaults", settings: *o.Defaults})
	}
	layers = append(layers, layer{name: "descriptor", field: "", settings: d.Settings})

	variantLayers, ok := r.variantLayers(variantName)
	if !ok {
		return nil, errors.Join(r.errs...)
	}
	layers = append(layers, variantLayers...)

	signingConfig := r.resolveSigningConfigs(layers)

	settings := Settings{}
	for _, l := range layers {
		settings = settings.Overlay(l.settings)
	}

	plan := r.validateSettings(settings)

	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}

	plan.Variant = variantName
	plan.Plugins = plugins
	if signingConfig != nil {
		plan.SigningConfigRef = signingConfig.Name
		plan.SigningConfig = signingConfig
	}
	for _, l := range layers {
		plan.Layers = append(plan.Layers, l.name)
	}

	return plan, nil
}

// ResolveAll resolves each named variant of d concurrently, returning the
// plans in the order of names. With no names, every variant of d is
// resolved. Failures of every variant are joined.
func ResolveAll(ctx context.Context, d *BuildDescriptor, names []string, opts ...ResolveOpt) ([]*ResolvedBuildPlan, error) {
	if len(names) == 0 {
		names = Variants(d)
	}

	var (
		log   = LoggerFrom(ctx)
		plans = make([]*ResolvedBuildPlan, len(names))
		errs  = make([]error, len(names))
		eg    = new(errgroup.Group)
	)
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for i, name := range names {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}

			plan, err := Resolve(d, name, opts...)
			if err != nil {
				errs[i] = fmt.Errorf("resolve variant %s: %w", name, err)
				return nil
			}

			log.V(1).Info("resolved variant", "variant", name, "applicationId", plan.ApplicationID)
			plans[i] = plan
			return nil
		})
	}

	// Every goroutine records its failure in errs and returns nil so that
	// one bad variant does not hide the others. Wait only joins them.
	_ = eg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return plans, nil
}

// Variants lists the variant names of d: the platform's implicit variants
// followed by those declared in d, in declaration order.
func Variants(d *BuildDescriptor) []string {
	names := []string{}

	if platform, ok := platformFor(d.Platform); ok {
		for _, v := range platform.Variants {
			names = append(names, v.Name)
		}
	}

	for _, v := range d.Variants {
		if !xslice.Includes(names, v.Name) {
			names = append(names, v.Name)
		}
	}

	return names
}

type layer struct {
	name     string
	field    string
	settings Settings
}

type resolver struct {
	descriptor *BuildDescriptor
	platform   *Platform
	errs       []error
}

func (r *resolver) fail(err error, field, value, constraint string) {
	r.errs = append(r.errs, configError(err, field, value, constraint))
}

func (r *resolver) namespace() string {
	return xslice.Coalesce(r.descriptor.Namespace, r.descriptor.ApplicationID)
}

func (r *resolver) applicationID() string {
	return xslice.Coalesce(r.descriptor.ApplicationID, r.descriptor.Namespace)
}

// validateDescriptor checks everything that does not depend on the
// variant and resolves the descriptor's plugins.
func (r *resolver) validateDescriptor() []ResolvedPlugin {
	d := r.descriptor

	if namespace := r.namespace(); !r.platform.IsIdentifier(namespace) {
		r.fail(ErrIdentifierFormat, "namespace", namespace, r.platform.IdentifierGrammar)
	}

	if d.VersionCode <= 0 || d.VersionCode > r.platform.MaxVersionCode {
		r.fail(ErrInvalidVersionCode, "versionCode", strconv.Itoa(d.VersionCode),
			fmt.Sprintf("positive integer no greater than %d", r.platform.MaxVersionCode))
	}

	if sourceRoot := d.SourceRoot; filepath.IsAbs(sourceRoot) || path.IsAbs(filepath.ToSlash(sourceRoot)) {
		r.fail(ErrInvalidSourceRoot, "sourceRoot", sourceRoot, "path relative to the descriptor")
	}

	r.checkNames("signingConfigs", len(d.SigningConfigs), func(i int) string {
		return d.SigningConfigs[i].Name
	}, bvrregexp.IsSigningConfigName, "letter followed by letters, digits, '_' or '-'")

	r.checkNames("variants", len(d.Variants), func(i int) string {
		return d.Variants[i].Name
	}, bvrregexp.IsVariantName, "lower camel case, e.g. stagingRelease")

	r.checkNames("pluginCatalog", len(d.PluginCatalog), func(i int) string {
		return d.PluginCatalog[i].ID
	}, bvrregexp.IsPluginID, "dotted plugin ID, e.g. com.google.gms.google-services")

	r.checkNames("plugins", len(d.Plugins), func(i int) string {
		return d.Plugins[i]
	}, bvrregexp.IsPluginID, "dotted plugin ID, e.g. com.android.application")

	plugins := make([]ResolvedPlugin, 0, len(d.Plugins))
	for i, id := range d.Plugins {
		if j := slices.IndexFunc(d.PluginCatalog, func(p PluginReference) bool {
			return p.ID == id
		}); j >= 0 {
			plugins = append(plugins, ResolvedPlugin{
				ID:      id,
				Version: d.PluginCatalog[j].Version,
				Builtin: r.platform.builtinPlugin(id),
			})
		} else if r.platform.builtinPlugin(id) {
			plugins = append(plugins, ResolvedPlugin{ID: id, Builtin: true})
		} else {
			r.fail(ErrUnresolvedReference, fmt.Sprintf("plugins[%d]", i), id,
				fmt.Sprintf("builtin %s plugin or pluginCatalog entry", r.platform.Name))
		}
	}

	return plugins
}

func (r *resolver) checkNames(field string, n int, name func(int) string, valid func(string) bool, grammar string) {
	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		var (
			v      = name(i)
			fieldI = fmt.Sprintf("%s[%d]", field, i)
		)

		if !valid(v) {
			r.fail(ErrIdentifierFormat, fieldI, v, grammar)
		}

		if seen[v] {
			r.fail(ErrDuplicateName, fieldI, v, "unique within "+field)
		}
		seen[v] = true
	}
}

// variantLayers returns the layers contributed by the named variant.
func (r *resolver) variantLayers(name string) ([]layer, bool) {
	_, declared := r.descriptor.LookupVariant(name)
	_, implicit := r.platform.variant(name)
	if !declared && !implicit {
		r.fail(ErrUnknownVariant, "variant", name, "one of "+strings.Join(Variants(r.descriptor), ", "))
		return nil, false
	}

	var (
		layers  = []layer{}
		visited = map[string]bool{}
	)

	ok := r.visit(name, "variant", nil, visited, &layers)
	return layers, ok
}

func (r *resolver) visit(name, field string, stack []string, visited map[string]bool, layers *[]layer) bool {
	if slices.Contains(stack, name) {
		r.fail(ErrVariantCycle, field, name, strings.Join(append(slices.Clip(stack), name), " -> "))
		return false
	} else if visited[name] {
		return true
	}

	var (
		declared, isDeclared = r.descriptor.LookupVariant(name)
		implicit, isImplicit = r.platform.variant(name)
		ok                   = true
	)
	if !isDeclared && !isImplicit {
		r.fail(ErrUnresolvedReference, field, name, "declared variant")
		return false
	}

	if isImplicit {
		*layers = append(*layers, layer{
			name:     r.platform.Name + ":" + name,
			field:    r.platform.Name + " variant " + name,
			settings: implicit.Settings,
		})
	}

	if isDeclared {
		stack = append(slices.Clip(stack), name)
		for i, parent := range declared.Extends {
			ok = r.visit(parent, fmt.Sprintf("variants[%s].extends[%d]", name, i), stack, visited, layers) && ok
		}

		*layers = append(*layers, layer{
			name:     "variant:" + name,
			field:    fmt.Sprintf("variants[%s]", name),
			settings: declared.Settings,
		})
	}

	visited[name] = true
	return ok
}

// resolveSigningConfigs checks that every signingConfig set on any layer
// is declared and returns a copy of the one that wins. An empty name
// leaves the variant unsigned.
func (r *resolver) resolveSigningConfigs(layers []layer) *SigningConfig {
	var winner *SigningConfig
	for _, l := range layers {
		if l.settings.SigningConfig == nil {
			continue
		}

		ref := *l.settings.SigningConfig
		if ref == "" {
			winner = nil
			continue
		}

		signingConfig, ok := r.descriptor.LookupSigningConfig(ref)
		if !ok {
			r.fail(ErrUnresolvedReference, joinField(l.field, "signingConfig"), ref, "declared signing config")
			winner = nil
			continue
		}

		sc := *signingConfig
		winner = &sc
	}

	return winner
}

// validateSettings checks the merged settings and builds the variant
// independent part of the plan from them.
func (r *resolver) validateSettings(s Settings) *ResolvedBuildPlan {
	plan := &ResolvedBuildPlan{
		Platform:            r.platform.Name,
		Namespace:           r.namespace(),
		ApplicationID:       r.applicationID() + deref(s.ApplicationIDSuffix),
		VersionCode:         r.descriptor.VersionCode,
		VersionName:         r.descriptor.VersionName + deref(s.VersionNameSuffix),
		NDKVersion:          deref(s.NDKVersion),
		SourceCompatibility: deref(s.SourceCompatibility),
		TargetCompatibility: deref(s.TargetCompatibility),
		JVMTarget:           deref(s.JVMTarget),
		Minify:              deref(s.Minify),
		ShrinkResources:     deref(s.ShrinkResources),
		Debuggable:          deref(s.Debuggable),
		SourceRoot:          path.Clean(filepath.ToSlash(xslice.Coalesce(r.descriptor.SourceRoot, "."))),
	}

	if suffix := deref(s.ApplicationIDSuffix); suffix != "" && !bvrregexp.IsIDSuffix(suffix) {
		r.fail(ErrIdentifierFormat, "applicationIdSuffix", suffix, "one or more '.segment'")
	} else if !r.platform.IsIdentifier(plan.ApplicationID) {
		r.fail(ErrIdentifierFormat, "applicationId", plan.ApplicationID, r.platform.IdentifierGrammar)
	}

	if !isSemver(plan.VersionName) {
		r.fail(ErrInvalidVersionName, "versionName", plan.VersionName, "semantic version, e.g. 1.0.0")
	}

	if plan.NDKVersion != "" && !Version(plan.NDKVersion).Valid() {
		r.fail(ErrInvalidVersion, "ndkVersion", plan.NDKVersion, "dotted numeric version")
	}

	var (
		minV, minOK         = r.requireVersion("minPlatformVersion", s.MinPlatformVersion)
		targetV, targetOK   = r.requireVersion("targetPlatformVersion", s.TargetPlatformVersion)
		compileV, compileOK = r.requireVersion("compileToolchainVersion", s.CompileToolchainVersion)
	)
	plan.MinPlatformVersion, plan.TargetPlatformVersion, plan.CompileToolchainVersion = minV, targetV, compileV

	if minOK && targetOK {
		if c, _ := minV.Compare(targetV); c > 0 {
			r.fail(ErrVersionRange, "minPlatformVersion", minV.String(), "must not exceed targetPlatformVersion "+targetV.String())
		}
	}

	if targetOK && compileOK {
		if c, _ := targetV.Compare(compileV); c > 0 {
			r.fail(ErrVersionRange, "targetPlatformVersion", targetV.String(), "must not exceed compileToolchainVersion "+compileV.String())
		}
	}

	var (
		sourceOK       = r.optionalVersion("sourceCompatibility", plan.SourceCompatibility)
		targetCompatOK = r.optionalVersion("targetCompatibility", plan.TargetCompatibility)
		jvmOK          = r.optionalVersion("jvmTarget", plan.JVMTarget)
	)

	if sourceOK && targetCompatOK {
		if c, _ := plan.SourceCompatibility.JavaLevel().Compare(plan.TargetCompatibility.JavaLevel()); c > 0 {
			r.fail(ErrVersionRange, "sourceCompatibility", plan.SourceCompatibility.String(), "must not exceed targetCompatibility "+plan.TargetCompatibility.String())
		}
	}

	if jvmOK && targetCompatOK {
		if c, _ := plan.JVMTarget.JavaLevel().Compare(plan.TargetCompatibility.JavaLevel()); c != 0 {
			r.fail(ErrVersionRange, "jvmTarget", plan.JVMTarget.String(), "must equal targetCompatibility "+plan.TargetCompatibility.String())
		}
	}

	if plan.ShrinkResources && !plan.Minify {
		r.fail(ErrIncompatibleSettings, "shrinkResources", "true", "requires minify")
	}

	return plan
}

func (r *resolver) requireVersion(field string, v *Version) (Version, bool) {
	if v == nil {
		r.fail(ErrInvalidVersion, field, "", "required")
		return "", false
	} else if !v.Valid() {
		r.fail(ErrInvalidVersion, field, v.String(), "dotted numeric version, e.g. 34 or 17.0")
		return *v, false
	}

	return *v, true
}

// optionalVersion reports whether v is set and valid.
func (r *resolver) optionalVersion(field string, v Version) bool {
	if v == "" {
		return false
	} else if !v.Valid() {
		r.fail(ErrInvalidVersion, field, v.String(), "dotted numeric version, e.g. 1.8 or 17")
		return false
	}

	return true
}

// isSemver reports whether name is a full MAJOR.MINOR.PATCH semantic
// version. semver.IsValid alone accepts shorthands such as "1" and "1.0".
func isSemver(name string) bool {
	v := xstrings.EnsurePrefix(name, "v")
	return semver.IsValid(v) && semver.Canonical(v) == strings.TrimSuffix(v, semver.Build(v))
}

func joinField(prefix, field string) string {
	if prefix == "" {
		return field
	}

	return prefix + "." + field
}
