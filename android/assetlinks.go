package android

import (
	"fmt"

	"github.com/frantjc/bvr"
)

const (
	// AssetLinksPath is where a website serves its Digital Asset Links.
	AssetLinksPath = "/.well-known/assetlinks.json"

	RelationHandleAllURLs = "delegate_permission/common.handle_all_urls"
	NamespaceAndroidApp   = "android_app"
)

type AssetLink struct {
	Relation []string `json:"relation,omitempty"`
	Target   Target   `json:"target,omitempty"`
}

type Target struct {
	Namespace              string   `json:"namespace,omitempty"`
	PackageName            string   `json:"package_name,omitempty"`
	SHA256CertFingerprints []string `json:"sha256_cert_fingerprints,omitempty"`
}

// AssetLinksFromPlan returns the statement that lets the app built from
// plan and signed by a certificate with one of sha256CertFingerprints
// handle a website's URLs.
func AssetLinksFromPlan(plan *bvr.ResolvedBuildPlan, sha256CertFingerprints ...string) ([]AssetLink, error) {
	if plan.Platform != bvr.PlatformAndroid {
		return nil, fmt.Errorf("assetlinks.json requires an %s plan, got %s", bvr.PlatformAndroid, plan.Platform)
	} else if len(sha256CertFingerprints) == 0 {
		return nil, fmt.Errorf("assetlinks.json requires at least one sha256 cert fingerprint")
	}

	return []AssetLink{
		{
			Relation: []string{RelationHandleAllURLs},
			Target: Target{
				Namespace:              NamespaceAndroidApp,
				PackageName:            plan.ApplicationID,
				SHA256CertFingerprints: sha256CertFingerprints,
			},
		},
	}, nil
}
