package bvrregexp

func IsAndroidPackage(name string) bool {
	return AndroidPackage.MatchString(name)
}

func IsBundleIdentifier(name string) bool {
	return BundleIdentifier.MatchString(name)
}

func IsIDSuffix(suffix string) bool {
	return IDSuffix.MatchString(suffix)
}

func IsVariantName(name string) bool {
	return VariantName.MatchString(name)
}

func IsSigningConfigName(name string) bool {
	return SigningConfigName.MatchString(name)
}

func IsPluginID(id string) bool {
	return PluginID.MatchString(id)
}

func IsTeamID(id string) bool {
	return TeamID.MatchString(id)
}

func IsAPK(name string) bool {
	return APK.MatchString(name)
}

func IsIPA(name string) bool {
	return IPA.MatchString(name)
}

func IsArtifact(name string) bool {
	return Artifact.MatchString(name)
}
