package android

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/frantjc/bvr"
)

const (
	AndroidManifestName = "AndroidManifest.xml"
	// Namespace is the XML namespace of android:* attributes.
	Namespace = "http://schemas.android.com/apk/res/android"
)

type Manifest struct {
	XMLName        xml.Name                 `xml:"manifest"`
	UsesSDK        *ManifestUsesSDK         `xml:"uses-sdk,omitempty"`
	UsesPermission []ManifestUsesPermission `xml:"uses-permission"`
	Application    ManifestApplication      `xml:"application"`
	Attrs          []xml.Attr               `xml:",any,attr"`
}

// Package returns the manifest's package attribute, which apktool sets
// to the applicationId.
func (m *Manifest) Package() string {
	return attr(m.Attrs, "", "package")
}

// AndroidAttr returns the value of the manifest's android:local attribute.
func (m *Manifest) AndroidAttr(local string) string {
	return attr(m.Attrs, Namespace, local)
}

type ManifestUsesSDK struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

type ManifestUsesPermission struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

type ManifestApplication struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

// attr finds the attribute named local in space. A decoded attribute
// carries the namespace URL in Name.Space, while one built by
// ManifestFromPlan carries the "android:" prefix in Name.Local.
func attr(attrs []xml.Attr, space, local string) string {
	for _, a := range attrs {
		switch {
		case a.Name.Space == space && a.Name.Local == local:
			return a.Value
		case space == Namespace && a.Name.Space == "" && a.Name.Local == "android:"+local:
			return a.Value
		}
	}

	return ""
}

func androidAttr(local, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: "android:" + local}, Value: value}
}

// ManifestFromPlan returns the parts of AndroidManifest.xml that the
// Android Gradle plugin derives from plan.
func ManifestFromPlan(plan *bvr.ResolvedBuildPlan) (*Manifest, error) {
	if plan.Platform != bvr.PlatformAndroid {
		return nil, fmt.Errorf("AndroidManifest.xml requires an %s plan, got %s", bvr.PlatformAndroid, plan.Platform)
	}

	return &Manifest{
		Attrs: []xml.Attr{
			{Name: xml.Name{Local: "xmlns:android"}, Value: Namespace},
			{Name: xml.Name{Local: "package"}, Value: plan.ApplicationID},
			androidAttr("versionCode", strconv.Itoa(plan.VersionCode)),
			androidAttr("versionName", plan.VersionName),
			androidAttr("compileSdkVersion", strconv.Itoa(plan.CompileToolchainVersion.Major())),
		},
		UsesSDK: &ManifestUsesSDK{
			Attrs: []xml.Attr{
				androidAttr("minSdkVersion", strconv.Itoa(plan.MinPlatformVersion.Major())),
				androidAttr("targetSdkVersion", strconv.Itoa(plan.TargetPlatformVersion.Major())),
			},
		},
		Application: ManifestApplication{
			Attrs: []xml.Attr{
				androidAttr("debuggable", strconv.FormatBool(plan.Debuggable)),
			},
		},
	}, nil
}
