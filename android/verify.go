package android

import (
	"context"
	"errors"
	"strconv"

	"github.com/frantjc/bvr"
	"github.com/frantjc/bvr/apktool"
)

// APKInspector is implemented by *APKDecoder.
type APKInspector interface {
	Manifest(context.Context) (*Manifest, error)
	Metadata(context.Context) (*apktool.Metadata, error)
	SHA256CertFingerprints(context.Context) (string, error)
}

var (
	_ APKInspector = &APKDecoder{}
)

// VerifyOpts configure VerifyAPK.
type VerifyOpts struct {
	// SHA256CertFingerprints, if set, is compared against the
	// fingerprint of the certificate that signed the .apk.
	SHA256CertFingerprints string
}

// VerifyAPK checks that the .apk inspected by apk was built from plan.
// Every difference is returned as a *bvr.MismatchError, joined.
func VerifyAPK(ctx context.Context, plan *bvr.ResolvedBuildPlan, apk APKInspector, opts *VerifyOpts) error {
	manifest, err := apk.Manifest(ctx)
	if err != nil {
		return err
	}

	metadata, err := apk.Metadata(ctx)
	if err != nil {
		return err
	}

	planned, err := apktool.MetadataFromPlan(plan)
	if err != nil {
		return err
	}

	var (
		sdkInfo     = metadata.SDKInfo
		versionInfo = metadata.VersionInfo
	)
	if sdkInfo == nil {
		sdkInfo = &apktool.SDKInfo{}
	}
	if versionInfo == nil {
		versionInfo = &apktool.VersionInfo{}
	}

	errs := []error{
		bvr.Mismatch("applicationId", plan.ApplicationID, manifest.Package()),
		bvr.Mismatch("versionCode", strconv.Itoa(int(planned.VersionInfo.VersionCode)), strconv.Itoa(int(versionInfo.VersionCode))),
		bvr.Mismatch("versionName", planned.VersionInfo.VersionName, versionInfo.VersionName),
		bvr.Mismatch("minPlatformVersion", strconv.Itoa(planned.SDKInfo.MinSDKVersion.Major()), strconv.Itoa(sdkInfo.MinSDKVersion.Major())),
		bvr.Mismatch("targetPlatformVersion", strconv.Itoa(planned.SDKInfo.TargetSDKVersion.Major()), strconv.Itoa(sdkInfo.TargetSDKVersion.Major())),
		bvr.Mismatch("debuggable", strconv.FormatBool(plan.Debuggable), strconv.FormatBool(attr(manifest.Application.Attrs, Namespace, "debuggable") == "true")),
	}

	if opts != nil && opts.SHA256CertFingerprints != "" {
		sha256CertFingerprints, err := apk.SHA256CertFingerprints(ctx)
		if err != nil {
			return err
		}

		errs = append(errs, bvr.Mismatch("signingConfig", opts.SHA256CertFingerprints, sha256CertFingerprints))
	}

	return errors.Join(errs...)
}
