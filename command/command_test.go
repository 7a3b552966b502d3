package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frantjc/bvr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	_ "gocloud.dev/blob/memblob"
)

const testDescriptor = `
namespace: com.example.app
versionCode: 3
versionName: 1.2.0
plugins:
  - com.android.application
minPlatformVersion: 24
targetPlatformVersion: 35
compileToolchainVersion: 35
signingConfigs:
  - name: upload
    storeFile: upload.jks
    storePassword: hunter2
    keyAlias: upload
variants:
  - name: release
    signingConfig: upload
    minify: true
  - name: staging
    extends: [release]
    applicationIdSuffix: .staging
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var (
		dir  = t.TempDir()
		name = filepath.Join(dir, "bvr.yaml")
		out  = new(bytes.Buffer)
		cmd  = NewBVR()
	)
	require.NoError(t, os.WriteFile(name, []byte(testDescriptor), 0o644))

	for i, arg := range args {
		if arg == "DESCRIPTOR" {
			args[i] = name
		}
	}

	cmd.SetArgs(append(args, "--defaults", filepath.Join(dir, "defaults.yaml")))
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResolveYAML(t *testing.T) {
	out, err := run(t, "resolve", "DESCRIPTOR", "release", "staging", "-o", "yaml")
	require.NoError(t, err)

	var (
		dec   = yaml.NewDecoder(strings.NewReader(out))
		plans = []*bvr.ResolvedBuildPlan{}
	)
	for {
		plan := &bvr.ResolvedBuildPlan{}
		if err := dec.Decode(plan); err != nil {
			break
		}
		plans = append(plans, plan)
	}

	require.Len(t, plans, 2)
	assert.Equal(t, "com.example.app", plans[0].ApplicationID)
	assert.Equal(t, "com.example.app.staging", plans[1].ApplicationID)
	assert.Equal(t, "upload", plans[1].SigningConfigRef)
	assert.True(t, plans[1].Minify)
}

func TestResolveManifest(t *testing.T) {
	out, err := run(t, "resolve", "DESCRIPTOR", "release", "-o", "manifest")
	require.NoError(t, err)
	assert.Contains(t, out, `package="com.example.app"`)
	assert.Contains(t, out, `android:minSdkVersion="24"`)

	_, err = run(t, "resolve", "DESCRIPTOR", "-o", "manifest")
	assert.ErrorContains(t, err, "exactly one variant")

	_, err = run(t, "resolve", "DESCRIPTOR", "release", "-o", "plist")
	assert.Error(t, err)
}

func TestResolveBlob(t *testing.T) {
	out, err := run(t, "resolve", "DESCRIPTOR", "release", "--blob", "mem://")
	require.NoError(t, err)
	assert.Equal(t, "com.example.app/release/plan.json\n", out)
}

func TestResolveUnknownVariant(t *testing.T) {
	_, err := run(t, "resolve", "DESCRIPTOR", "beta")
	require.ErrorIs(t, err, bvr.ErrUnknownVariant)
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", "DESCRIPTOR")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "debug\tsha256:"))
	assert.True(t, strings.HasPrefix(lines[2], "staging\tsha256:"))
}

func TestVariants(t *testing.T) {
	out, err := run(t, "variants", "DESCRIPTOR")
	require.NoError(t, err)
	assert.Equal(t, "debug\nrelease\nstaging\n", out)
}

func TestStorePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	name, err := storePath("app/bvr.yaml", "~/.android/debug.keystore")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".android", "debug.keystore"), name)

	name, err = storePath("app/bvr.yaml", "upload.jks")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("app", "upload.jks"), name)

	name, err = storePath("app/bvr.yaml", "/keys/upload.jks")
	require.NoError(t, err)
	assert.Equal(t, "/keys/upload.jks", name)
}

func TestIsTruthy(t *testing.T) {
	assert.True(t, isTruthy("TRUE"))
	assert.True(t, isTruthy("1"))
	assert.False(t, isTruthy("0"))
}

func TestVerifyUnsupportedArtifact(t *testing.T) {
	_, err := run(t, "verify", "DESCRIPTOR", "release", "app-release.aab", "--decode-dir", t.TempDir())
	assert.ErrorContains(t, err, "unsupported artifact app-release.aab")
}
