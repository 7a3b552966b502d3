package bvrblob

import "path"

func PlanKey(applicationID, variant string) string {
	return path.Join(applicationID, variant, "plan.json")
}
