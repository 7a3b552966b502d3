package bvrblob

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/frantjc/bvr"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// ReadPlan reads the plan that WritePlan wrote for the given variant of
// applicationID and checks it against the digest it was written with.
func ReadPlan(ctx context.Context, bucket *blob.Bucket, applicationID, variant string) (*bvr.ResolvedBuildPlan, error) {
	key := PlanKey(applicationID, variant)

	attrs, err := bucket.Attributes(ctx, key)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, fmt.Errorf("no plan for variant %s of %s: %w", variant, applicationID, err)
	} else if err != nil {
		return nil, err
	}

	b, err := bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, err
	}

	plan := &bvr.ResolvedBuildPlan{}
	if err = json.Unmarshal(b, plan); err != nil {
		return nil, err
	}

	dig, err := plan.Digest()
	if err != nil {
		return nil, err
	}

	if expected := attrs.Metadata["digest"]; expected != "" && expected != dig.String() {
		return nil, fmt.Errorf("plan %s has digest %s, expected %s", key, dig, expected)
	}

	return plan, nil
}
