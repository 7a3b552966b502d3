package bvrregexp

import "regexp"

var (
	// AndroidPackage is a Java package name with at least two segments,
	// as required of an Android namespace or applicationId.
	AndroidPackage = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)+$`)
	// BundleIdentifier is a reverse-DNS Apple CFBundleIdentifier.
	BundleIdentifier = regexp.MustCompile(`^[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)+$`)
	// IDSuffix is appended to an identifier, e.g. ".debug".
	IDSuffix = regexp.MustCompile(`^(\.[a-zA-Z0-9_-]+)+$`)

	VariantName       = regexp.MustCompile(`^[a-z][a-zA-Z0-9]{0,63}$`)
	SigningConfigName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,63}$`)
	PluginID          = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*(\.[a-zA-Z0-9_-]+)*$`)
	TeamID            = regexp.MustCompile(`^[A-Z0-9]{10}$`)

	APK      = regexp.MustCompile(`(?i)^[\w/.-]+\.apk$`)
	IPA      = regexp.MustCompile(`(?i)^[\w/.-]+\.ipa$`)
	Artifact = regexp.MustCompile(`(?i)^[\w/.-]+\.(ipa|apk)$`)
)
