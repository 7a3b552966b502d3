package bvr

import (
	"runtime/debug"
	"strings"
)

var (
	// VersionCore is set at build time with
	// -ldflags "-X github.com/frantjc/bvr.VersionCore=1.2.3".
	VersionCore = "0.0.0"
	// Prerelease is set at build time.
	Prerelease = ""
)

// SemVer returns the semantic version of bvr, appending the VCS revision
// from the build info as build metadata when it is known.
func SemVer() string {
	semver := VersionCore
	if Prerelease != "" {
		semver += "-" + Prerelease
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range buildInfo.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				revision := setting.Value
				if len(revision) > 7 {
					revision = revision[:7]
				}

				return semver + "+" + strings.TrimSpace(revision)
			}
		}
	}

	return semver
}
