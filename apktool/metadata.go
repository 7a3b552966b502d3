package apktool

import (
	"fmt"
	"strconv"

	"github.com/frantjc/bvr"
	"gopkg.in/yaml.v3"
)

// MetadataName is the name of the file apktool writes its Metadata to
// in the root of a decoded .apk.
const MetadataName = "apktool.yml"

// Int is an integer that apktool may write either bare or quoted.
type Int int

func (i *Int) UnmarshalYAML(value *yaml.Node) error {
	n, err := strconv.Atoi(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}

	*i = Int(n)
	return nil
}

type UsesFramework struct {
	IDs []int `yaml:"ids"`
	Tag any   `yaml:"tag"`
}

type SDKInfo struct {
	MinSDKVersion    bvr.Version `yaml:"minSdkVersion,omitempty"`
	TargetSDKVersion bvr.Version `yaml:"targetSdkVersion,omitempty"`
}

type PackageInfo struct {
	ForcedPackageID       Int `yaml:"forcedPackageId,omitempty"`
	RenameManifestPackage any `yaml:"renameManifestPackage,omitempty"`
}

type VersionInfo struct {
	VersionCode Int    `yaml:"versionCode"`
	VersionName string `yaml:"versionName"`
}

type Metadata struct {
	Version                string         `yaml:"version,omitempty"`
	APKFileName            string         `yaml:"apkFileName,omitempty"`
	IsFrameworkAPK         bool           `yaml:"isFrameworkApk,omitempty"`
	UsesFramework          *UsesFramework `yaml:"usesFramework,omitempty"`
	SDKInfo                *SDKInfo       `yaml:"sdkInfo,omitempty"`
	PackageInfo            *PackageInfo   `yaml:"packageInfo,omitempty"`
	VersionInfo            *VersionInfo   `yaml:"versionInfo,omitempty"`
	ResourcesAreCompressed bool           `yaml:"resourcesAreCompressed,omitempty"`
	SharedLibrary          bool           `yaml:"sharedLibrary,omitempty"`
	SparseResources        bool           `yaml:"sparseResources,omitempty"`
	UnknownFiles           map[string]int `yaml:"unknownFiles,omitempty"`
	DoNotCompress          []string       `yaml:"doNotCompress,omitempty"`
}

// MetadataFromPlan returns the apktool.yml that an .apk built from plan
// decodes to, as far as the plan determines it.
func MetadataFromPlan(plan *bvr.ResolvedBuildPlan) (*Metadata, error) {
	if plan.Platform != bvr.PlatformAndroid {
		return nil, fmt.Errorf("apktool metadata requires an %s plan, got %s", bvr.PlatformAndroid, plan.Platform)
	}

	return &Metadata{
		APKFileName: fmt.Sprintf("app-%s.apk", plan.Variant),
		SDKInfo: &SDKInfo{
			MinSDKVersion:    plan.MinPlatformVersion,
			TargetSDKVersion: plan.TargetPlatformVersion,
		},
		VersionInfo: &VersionInfo{
			VersionCode: Int(plan.VersionCode),
			VersionName: plan.VersionName,
		},
	}, nil
}
