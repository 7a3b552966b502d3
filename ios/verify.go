package ios

import (
	"context"
	"errors"
	"strconv"

	"github.com/frantjc/bvr"
)

// IPAInspector is implemented by *IPADecoder.
type IPAInspector interface {
	Info(context.Context) (*Info, error)
}

var (
	_ IPAInspector = &IPADecoder{}
)

// VerifyIPA checks that the .ipa inspected by ipa was built from plan.
// Every difference is returned as a *bvr.MismatchError, joined.
func VerifyIPA(ctx context.Context, plan *bvr.ResolvedBuildPlan, ipa IPAInspector) error {
	info, err := ipa.Info(ctx)
	if err != nil {
		return err
	}

	minimumOSVersion := bvr.Mismatch("minPlatformVersion", plan.MinPlatformVersion.String(), info.MinimumOSVersion)
	if c, err := plan.MinPlatformVersion.Compare(bvr.Version(info.MinimumOSVersion)); err == nil && c == 0 {
		// 12 and 12.0 are the same deployment target.
		minimumOSVersion = nil
	}

	return errors.Join(
		bvr.Mismatch("applicationId", plan.ApplicationID, info.CFBundleIdentifier),
		bvr.Mismatch("versionName", plan.VersionName, info.CFBundleShortVersionString),
		bvr.Mismatch("versionCode", strconv.Itoa(plan.VersionCode), info.CFBundleVersion),
		minimumOSVersion,
	)
}
