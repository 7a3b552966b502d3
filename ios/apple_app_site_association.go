package ios

import (
	"fmt"

	"github.com/frantjc/bvr"
	"github.com/frantjc/bvr/internal/bvrregexp"
)

// AppleAppSiteAssociationPath is where a website serves its
// apple-app-site-association document.
const AppleAppSiteAssociationPath = "/.well-known/apple-app-site-association"

type AppleAppSiteAssociation struct {
	AppLinks       AppLinks       `json:"applinks"`
	WebCredentials WebCredentials `json:"webcredentials"`
	AppClips       AppClips       `json:"appclips"`
}

type AppLinks struct {
	Details []Details `json:"details,omitempty"`
}

type Details struct {
	AppIDs     []string    `json:"appIDs,omitempty"`
	Components []Component `json:"components,omitempty"`
}

type Component struct {
	Fragment string            `json:"#,omitempty"`
	Path     string            `json:"/,omitempty"`
	Query    map[string]string `json:"?,omitempty"`
	Exclude  bool              `json:"exclude,omitempty"`
	Comment  string            `json:"comment,omitempty"`
}

type WebCredentials struct {
	Apps []string `json:"apps,omitempty"`
}

type AppClips struct {
	Apps []string `json:"apps,omitempty"`
}

// AppID returns the "TEAMID.bundleIdentifier" application identifier of
// the app built from plan, taking the team from its signing config.
func AppID(plan *bvr.ResolvedBuildPlan) (string, error) {
	if plan.Platform != bvr.PlatformIOS {
		return "", fmt.Errorf("app ID requires an %s plan, got %s", bvr.PlatformIOS, plan.Platform)
	} else if !plan.Signed() {
		return "", fmt.Errorf("app ID requires a signing config for variant %s", plan.Variant)
	} else if team := plan.SigningConfig.DevelopmentTeam; !bvrregexp.IsTeamID(team) {
		return "", fmt.Errorf("invalid development team %q of signing config %s", team, plan.SigningConfigRef)
	}

	return plan.SigningConfig.DevelopmentTeam + "." + plan.ApplicationID, nil
}

// AppleAppSiteAssociationFromPlan returns a document that lets the app
// built from plan handle the given components of a website's URLs, or
// every URL if none are given.
func AppleAppSiteAssociationFromPlan(plan *bvr.ResolvedBuildPlan, components ...Component) (*AppleAppSiteAssociation, error) {
	appID, err := AppID(plan)
	if err != nil {
		return nil, err
	}

	if len(components) == 0 {
		components = []Component{{Path: "*"}}
	}

	return &AppleAppSiteAssociation{
		AppLinks: AppLinks{
			Details: []Details{
				{
					AppIDs:     []string{appID},
					Components: components,
				},
			},
		},
		WebCredentials: WebCredentials{
			Apps: []string{appID},
		},
	}, nil
}
