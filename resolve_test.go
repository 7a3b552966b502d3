package bvr_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/frantjc/bvr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newDescriptor() *bvr.BuildDescriptor {
	return &bvr.BuildDescriptor{
		Namespace:   "com.example.app",
		VersionCode: 1,
		VersionName: "1.0.0",
		Plugins:     []string{"com.android.application"},
		SigningConfigs: []bvr.SigningConfig{
			{
				Name:          "debug",
				StoreFile:     "debug.keystore",
				StorePassword: "android",
				KeyAlias:      "androiddebugkey",
				KeyPassword:   "android",
			},
		},
		Settings: bvr.Settings{
			MinPlatformVersion:      bvr.Ptr(bvr.Version("21")),
			TargetPlatformVersion:   bvr.Ptr(bvr.Version("34")),
			CompileToolchainVersion: bvr.Ptr(bvr.Version("34")),
		},
		Variants: []bvr.BuildVariant{
			{
				Name: "release",
				Settings: bvr.Settings{
					SigningConfig: bvr.Ptr("debug"),
				},
			},
		},
	}
}

func requireConfigError(t *testing.T, err error, sentinel error, field, value string) {
	t.Helper()
	require.ErrorIs(t, err, sentinel)
	require.ErrorIs(t, err, bvr.ErrConfig)

	for _, cerr := range bvr.ConfigErrors(err) {
		if errors.Is(cerr, sentinel) && cerr.Field == field && cerr.Value == value {
			return
		}
	}

	t.Fatalf("no %v for %s=%q in %v", sentinel, field, value, err)
}

func TestResolveSignedWithDeclaredConfig(t *testing.T) {
	plan, err := bvr.Resolve(newDescriptor(), "release")
	require.NoError(t, err)

	assert.Equal(t, "release", plan.Variant)
	assert.Equal(t, bvr.PlatformAndroid, plan.Platform)
	assert.Equal(t, "com.example.app", plan.Namespace)
	assert.Equal(t, "com.example.app", plan.ApplicationID)
	assert.Equal(t, bvr.Version("21"), plan.MinPlatformVersion)
	assert.Equal(t, bvr.Version("34"), plan.TargetPlatformVersion)
	assert.Equal(t, bvr.Version("34"), plan.CompileToolchainVersion)
	assert.Equal(t, "debug", plan.SigningConfigRef)
	require.True(t, plan.Signed())
	assert.Equal(t, "debug.keystore", plan.SigningConfig.StoreFile)
	assert.False(t, plan.Debuggable)
	assert.Equal(t, []bvr.ResolvedPlugin{{ID: "com.android.application", Builtin: true}}, plan.Plugins)
	assert.Equal(t, []string{"defaults", "descriptor", "android:release", "variant:release"}, plan.Layers)
}

func TestResolveUndeclaredSigningConfig(t *testing.T) {
	d := newDescriptor()
	d.Variants[0].SigningConfig = bvr.Ptr("release")

	_, err := bvr.Resolve(d, "release")
	requireConfigError(t, err, bvr.ErrUnresolvedReference, "variants[release].signingConfig", "release")
	assert.ErrorContains(t, err, `"release"`)
}

func TestResolveVersionRange(t *testing.T) {
	d := newDescriptor()
	d.MinPlatformVersion = bvr.Ptr(bvr.Version("35"))

	_, err := bvr.Resolve(d, "release")
	requireConfigError(t, err, bvr.ErrVersionRange, "minPlatformVersion", "35")
}

func TestResolveTargetExceedsCompile(t *testing.T) {
	d := newDescriptor()
	d.TargetPlatformVersion = bvr.Ptr(bvr.Version("35"))

	_, err := bvr.Resolve(d, "release")
	requireConfigError(t, err, bvr.ErrVersionRange, "targetPlatformVersion", "35")
}

func TestResolveUnknownVariant(t *testing.T) {
	_, err := bvr.Resolve(newDescriptor(), "staging")
	requireConfigError(t, err, bvr.ErrUnknownVariant, "variant", "staging")
	assert.ErrorContains(t, err, "debug, release")
}

func TestResolveOverlayOrdering(t *testing.T) {
	d := newDescriptor()
	d.Minify = bvr.Ptr(true)
	d.Variants[0].Minify = bvr.Ptr(false)

	plan, err := bvr.Resolve(d, "release")
	require.NoError(t, err)
	assert.False(t, plan.Minify)

	plan, err = bvr.Resolve(d, "debug")
	require.NoError(t, err)
	assert.True(t, plan.Minify)
}

func TestResolveImplicitDebug(t *testing.T) {
	d := newDescriptor()
	d.SigningConfigs = nil
	d.Variants = nil

	plan, err := bvr.Resolve(d, "debug")
	require.NoError(t, err)
	assert.True(t, plan.Debuggable)
	assert.Equal(t, "debug", plan.SigningConfigRef)
	assert.Equal(t, "~/.android/debug.keystore", plan.SigningConfig.StoreFile)

	plan, err = bvr.Resolve(d, "release")
	require.NoError(t, err)
	assert.False(t, plan.Signed())
	assert.Empty(t, plan.SigningConfigRef)
}

func TestResolveEmptySigningConfigUnsigns(t *testing.T) {
	d := newDescriptor()
	d.SigningConfig = bvr.Ptr("debug")
	d.Variants[0].SigningConfig = bvr.Ptr("")

	plan, err := bvr.Resolve(d, "release")
	require.NoError(t, err)
	assert.False(t, plan.Signed())
}

func TestResolveExtends(t *testing.T) {
	d := newDescriptor()
	d.Variants[0].Minify = bvr.Ptr(true)
	d.Variants = append(d.Variants, bvr.BuildVariant{
		Name:    "staging",
		Extends: []string{"release"},
		Settings: bvr.Settings{
			ApplicationIDSuffix: bvr.Ptr(".staging"),
			VersionNameSuffix:   bvr.Ptr("-staging"),
		},
	})

	plan, err := bvr.Resolve(d, "staging")
	require.NoError(t, err)
	assert.True(t, plan.Minify)
	assert.Equal(t, "debug", plan.SigningConfigRef)
	assert.Equal(t, "com.example.app.staging", plan.ApplicationID)
	assert.Equal(t, "com.example.app", plan.Namespace)
	assert.Equal(t, "1.0.0-staging", plan.VersionName)
	assert.Equal(t, []string{"defaults", "descriptor", "android:release", "variant:release", "variant:staging"}, plan.Layers)
}

func TestResolveVariantCycle(t *testing.T) {
	d := newDescriptor()
	d.Variants = append(d.Variants,
		bvr.BuildVariant{Name: "alpha", Extends: []string{"beta"}},
		bvr.BuildVariant{Name: "beta", Extends: []string{"alpha"}},
	)

	_, err := bvr.Resolve(d, "alpha")
	require.ErrorIs(t, err, bvr.ErrVariantCycle)
	assert.ErrorContains(t, err, "alpha -> beta -> alpha")
}

func TestResolveUnresolvedExtends(t *testing.T) {
	d := newDescriptor()
	d.Variants[0].Extends = []string{"base"}

	_, err := bvr.Resolve(d, "release")
	requireConfigError(t, err, bvr.ErrUnresolvedReference, "variants[release].extends[0]", "base")
}

func TestResolvePlugins(t *testing.T) {
	d := newDescriptor()
	d.Plugins = append(d.Plugins, "com.google.gms.google-services")

	_, err := bvr.Resolve(d, "release")
	requireConfigError(t, err, bvr.ErrUnresolvedReference, "plugins[1]", "com.google.gms.google-services")

	d.PluginCatalog = []bvr.PluginReference{{ID: "com.google.gms.google-services", Version: "4.4.2"}}

	plan, err := bvr.Resolve(d, "release")
	require.NoError(t, err)
	assert.Equal(t, []bvr.ResolvedPlugin{
		{ID: "com.android.application", Builtin: true},
		{ID: "com.google.gms.google-services", Version: "4.4.2"},
	}, plan.Plugins)
}

func TestResolveDuplicateNames(t *testing.T) {
	d := newDescriptor()
	d.Variants = append(d.Variants, bvr.BuildVariant{Name: "release"})

	_, err := bvr.Resolve(d, "release")
	requireConfigError(t, err, bvr.ErrDuplicateName, "variants[1]", "release")
}

func TestResolveShrinkResourcesRequiresMinify(t *testing.T) {
	d := newDescriptor()
	d.ShrinkResources = bvr.Ptr(true)

	_, err := bvr.Resolve(d, "release")
	require.ErrorIs(t, err, bvr.ErrIncompatibleSettings)

	d.Minify = bvr.Ptr(true)
	_, err = bvr.Resolve(d, "release")
	require.NoError(t, err)
}

func TestResolveJavaLevels(t *testing.T) {
	d := newDescriptor()
	d.SourceCompatibility = bvr.Ptr(bvr.Version("11"))
	d.TargetCompatibility = bvr.Ptr(bvr.Version("11"))

	_, err := bvr.Resolve(d, "release")
	requireConfigError(t, err, bvr.ErrVersionRange, "jvmTarget", "1.8")

	d.JVMTarget = bvr.Ptr(bvr.Version("11"))
	_, err = bvr.Resolve(d, "release")
	require.NoError(t, err)

	d.SourceCompatibility = bvr.Ptr(bvr.Version("17"))
	_, err = bvr.Resolve(d, "release")
	requireConfigError(t, err, bvr.ErrVersionRange, "sourceCompatibility", "17")
}

func TestResolveReportsEveryViolation(t *testing.T) {
	d := newDescriptor()
	d.Namespace = "app"
	d.VersionCode = 0
	d.VersionName = "one"
	d.SourceRoot = "/abs"

	_, err := bvr.Resolve(d, "release")
	require.Error(t, err)
	assert.ErrorIs(t, err, bvr.ErrIdentifierFormat)
	assert.ErrorIs(t, err, bvr.ErrInvalidVersionCode)
	assert.ErrorIs(t, err, bvr.ErrInvalidVersionName)
	assert.ErrorIs(t, err, bvr.ErrInvalidSourceRoot)
	assert.GreaterOrEqual(t, len(bvr.ConfigErrors(err)), 4)
}

func TestResolveVersionCodeBounds(t *testing.T) {
	d := newDescriptor()
	d.VersionCode = 2100000001

	_, err := bvr.Resolve(d, "release")
	requireConfigError(t, err, bvr.ErrInvalidVersionCode, "versionCode", "2100000001")

	d.VersionCode = 2100000000
	_, err = bvr.Resolve(d, "release")
	require.NoError(t, err)
}

func TestResolveUnsupportedPlatform(t *testing.T) {
	d := newDescriptor()
	d.Platform = "windows"

	_, err := bvr.Resolve(d, "release")
	requireConfigError(t, err, bvr.ErrUnsupportedPlatform, "platform", "windows")
}

func TestResolveWithDefaults(t *testing.T) {
	d := newDescriptor()

	plan, err := bvr.Resolve(d, "release", bvr.WithDefaults(bvr.Settings{
		TargetPlatformVersion: bvr.Ptr(bvr.Version("33")),
		NDKVersion:            bvr.Ptr("27.0.12077973"),
	}))
	require.NoError(t, err)
	assert.Equal(t, bvr.Version("34"), plan.TargetPlatformVersion)
	assert.Equal(t, "27.0.12077973", plan.NDKVersion)
	assert.Equal(t, []string{"defaults", "user-defaults", "descriptor", "android:release", "variant:release"}, plan.Layers)
}

func TestResolveIOS(t *testing.T) {
	d := &bvr.BuildDescriptor{
		Platform:      bvr.PlatformIOS,
		ApplicationID: "com.example-app.ios",
		VersionCode:   7,
		VersionName:   "2.1.0",
		Settings: bvr.Settings{
			MinPlatformVersion: bvr.Ptr(bvr.Version("13.0")),
		},
	}

	plan, err := bvr.Resolve(d, "debug")
	require.NoError(t, err)
	assert.Equal(t, "com.example-app.ios", plan.Namespace)
	assert.Equal(t, bvr.Version("18.0"), plan.TargetPlatformVersion)
	assert.True(t, plan.Debuggable)
	assert.False(t, plan.Signed())
	assert.Equal(t, []string{"defaults", "descriptor", "ios:debug"}, plan.Layers)
}

func TestResolveFlutterShell(t *testing.T) {
	d := &bvr.BuildDescriptor{
		Namespace:     "com.malikhw47.fuckthaturl",
		ApplicationID: "com.malikhw47.fuckthaturl",
		VersionCode:   1,
		VersionName:   "1.0.0",
		SourceRoot:    "../..",
		Plugins: []string{
			"com.android.application",
			"kotlin-android",
			"dev.flutter.flutter-gradle-plugin",
		},
		Settings: bvr.Settings{
			MinPlatformVersion:      bvr.Ptr(bvr.Version("29")),
			TargetPlatformVersion:   bvr.Ptr(bvr.Version("36")),
			CompileToolchainVersion: bvr.Ptr(bvr.Version("36")),
			NDKVersion:              bvr.Ptr("29.0.14206865"),
			SourceCompatibility:     bvr.Ptr(bvr.Version("1.8")),
			TargetCompatibility:     bvr.Ptr(bvr.Version("1.8")),
			JVMTarget:               bvr.Ptr(bvr.Version("1.8")),
		},
		Variants: []bvr.BuildVariant{
			{
				Name: "release",
				Settings: bvr.Settings{
					Minify:        bvr.Ptr(false),
					SigningConfig: bvr.Ptr("debug"),
				},
			},
		},
	}

	plan, err := bvr.Resolve(d, "release")
	require.NoError(t, err)
	assert.Equal(t, "com.malikhw47.fuckthaturl", plan.ApplicationID)
	assert.Equal(t, "debug", plan.SigningConfigRef)
	assert.Equal(t, "androiddebugkey", plan.SigningConfig.KeyAlias)
	assert.Equal(t, "../..", plan.SourceRoot)
	assert.Equal(t, "29.0.14206865", plan.NDKVersion)
	assert.Len(t, plan.Plugins, 3)
}

func TestResolveDoesNotAliasDescriptor(t *testing.T) {
	d := newDescriptor()

	plan, err := bvr.Resolve(d, "release")
	require.NoError(t, err)

	plan.SigningConfig.StoreFile = "changed"
	plan.Plugins[0].ID = "changed"
	assert.Equal(t, "debug.keystore", d.SigningConfigs[0].StoreFile)
	assert.Equal(t, "com.android.application", d.Plugins[0])
}

func TestResolveDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var (
			target      = rapid.IntRange(21, 36).Draw(t, "target")
			minV        = rapid.IntRange(1, target).Draw(t, "min")
			versionCode = rapid.IntRange(1, 2100000000).Draw(t, "versionCode")
			minify      = rapid.Bool().Draw(t, "minify")
			d           = newDescriptor()
		)
		d.VersionCode = versionCode
		d.MinPlatformVersion = bvr.Ptr(bvr.Version(strconv.Itoa(minV)))
		d.TargetPlatformVersion = bvr.Ptr(bvr.Version(strconv.Itoa(target)))
		d.CompileToolchainVersion = bvr.Ptr(bvr.Version("36"))
		d.Minify = bvr.Ptr(minify)

		a, err := bvr.Resolve(d, "release")
		require.NoError(t, err)

		b, err := bvr.Resolve(d, "release")
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.NotSame(t, a, b)

		aDigest, err := a.Digest()
		require.NoError(t, err)
		bDigest, err := b.Digest()
		require.NoError(t, err)
		assert.Equal(t, aDigest, bDigest)

		aID, err := a.ID()
		require.NoError(t, err)
		bID, err := b.ID()
		require.NoError(t, err)
		assert.Equal(t, aID, bID)
	})
}

func TestResolveMinAboveTarget(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var (
			target = rapid.IntRange(1, 35).Draw(t, "target")
			minV   = rapid.IntRange(target+1, 36).Draw(t, "min")
			d      = newDescriptor()
		)
		d.MinPlatformVersion = bvr.Ptr(bvr.Version(strconv.Itoa(minV)))
		d.TargetPlatformVersion = bvr.Ptr(bvr.Version(strconv.Itoa(target)))

		_, err := bvr.Resolve(d, "release")
		require.ErrorIs(t, err, bvr.ErrVersionRange)
	})
}

func TestResolveAll(t *testing.T) {
	d := newDescriptor()

	assert.Equal(t, []string{"debug", "release"}, bvr.Variants(d))

	plans, err := bvr.ResolveAll(context.Background(), d, nil)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "debug", plans[0].Variant)
	assert.Equal(t, "release", plans[1].Variant)

	_, err = bvr.ResolveAll(context.Background(), d, []string{"release", "staging"})
	require.ErrorIs(t, err, bvr.ErrUnknownVariant)
	assert.ErrorContains(t, err, "resolve variant staging")
}

func TestResolveAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bvr.ResolveAll(ctx, newDescriptor(), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolveUndeclaredIOSVariant(t *testing.T) {
	d := &bvr.BuildDescriptor{
		Platform:      bvr.PlatformIOS,
		ApplicationID: "com.example.ios",
		VersionCode:   1,
		VersionName:   "1.0.0",
		Variants: []bvr.BuildVariant{
			{Name: "release"},
		},
	}

	_, err := bvr.Resolve(d, "staging")
	requireConfigError(t, err, bvr.ErrUnknownVariant, "variant", "staging")
	assert.ErrorContains(t, err, "debug, release")

	_, err = bvr.Resolve(d, "debug")
	require.NoError(t, err)
}

func TestResolveVersionNameShorthand(t *testing.T) {
	for versionName, valid := range map[string]bool{
		"1":                  false,
		"1.0":                false,
		"v1.0":               false,
		"1.0.0":              true,
		"v1.0.0":             true,
		"1.0.0-rc.1":         true,
		"1.0.0-rc.1+build.5": true,
		"1.0.0+build.5":      true,
	} {
		d := newDescriptor()
		d.VersionName = versionName

		_, err := bvr.Resolve(d, "release")
		if valid {
			assert.NoError(t, err, versionName)
		} else {
			requireConfigError(t, err, bvr.ErrInvalidVersionName, "versionName", versionName)
		}
	}
}

func TestResolveAllReportsEveryVariant(t *testing.T) {
	_, err := bvr.ResolveAll(context.Background(), newDescriptor(), []string{"beta", "release", "gamma"})
	require.ErrorIs(t, err, bvr.ErrUnknownVariant)
	assert.ErrorContains(t, err, "resolve variant beta")
	assert.ErrorContains(t, err, "resolve variant gamma")
	assert.NotContains(t, err.Error(), "resolve variant release")
	assert.Len(t, bvr.ConfigErrors(err), 2)
}

func TestPlatformForReturnsCopy(t *testing.T) {
	p, ok := bvr.PlatformFor(bvr.PlatformAndroid)
	require.True(t, ok)

	*p.Defaults.MinPlatformVersion = "99"
	p.Defaults.Debuggable = bvr.Ptr(true)
	p.Variants[0].Debuggable = bvr.Ptr(false)
	p.Plugins[0] = "changed"
	p.SigningConfigs[0].StorePassword = "changed"

	again, ok := bvr.PlatformFor("")
	require.True(t, ok)
	assert.NotSame(t, p, again)
	assert.Equal(t, bvr.Ptr(bvr.Version("21")), again.Defaults.MinPlatformVersion)
	assert.Equal(t, "com.android.application", again.Plugins[0])
	assert.Equal(t, "android", again.SigningConfigs[0].StorePassword)

	d := newDescriptor()
	d.MinPlatformVersion = nil

	plan, err := bvr.Resolve(d, "debug")
	require.NoError(t, err)
	assert.Equal(t, bvr.Version("21"), plan.MinPlatformVersion)
	assert.True(t, plan.Debuggable)
	assert.Equal(t, []bvr.ResolvedPlugin{{ID: "com.android.application", Builtin: true}}, plan.Plugins)
}
