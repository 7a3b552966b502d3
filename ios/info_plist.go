package ios

import (
	"fmt"
	"strconv"

	"github.com/frantjc/bvr"
)

type Info struct {
	CFBundleDisplayName        string   `plist:"CFBundleDisplayName,omitempty"`
	CFBundleExecutable         string   `plist:"CFBundleExecutable,omitempty"`
	CFBundleIdentifier         string   `plist:"CFBundleIdentifier"`
	CFBundleName               string   `plist:"CFBundleName,omitempty"`
	CFBundlePackageType        string   `plist:"CFBundlePackageType,omitempty"`
	CFBundleShortVersionString string   `plist:"CFBundleShortVersionString"`
	CFBundleSupportedPlatforms []string `plist:"CFBundleSupportedPlatforms,omitempty"`
	CFBundleVersion            string   `plist:"CFBundleVersion"`
	DTPlatformVersion          string   `plist:"DTPlatformVersion,omitempty"`
	MinimumOSVersion           string   `plist:"MinimumOSVersion,omitempty"`
}

// InfoFromPlan returns the Info.plist keys that Xcode derives from plan.
func InfoFromPlan(plan *bvr.ResolvedBuildPlan) (*Info, error) {
	if plan.Platform != bvr.PlatformIOS {
		return nil, fmt.Errorf("Info.plist requires an %s plan, got %s", bvr.PlatformIOS, plan.Platform)
	}

	return &Info{
		CFBundleIdentifier:         plan.ApplicationID,
		CFBundlePackageType:        "APPL",
		CFBundleShortVersionString: plan.VersionName,
		CFBundleVersion:            strconv.Itoa(plan.VersionCode),
		DTPlatformVersion:          plan.CompileToolchainVersion.String(),
		MinimumOSVersion:           plan.MinPlatformVersion.String(),
	}, nil
}
