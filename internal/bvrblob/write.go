package bvrblob

import (
	"context"
	"encoding/json"

	"github.com/frantjc/bvr"
	"gocloud.dev/blob"
)

const ContentTypePlan = "application/json"

// WritePlan hands plan off to an executor by writing its JSON encoding to
// bucket at PlanKey. It returns the key that was written.
func WritePlan(ctx context.Context, bucket *blob.Bucket, plan *bvr.ResolvedBuildPlan) (string, error) {
	b, err := json.Marshal(plan)
	if err != nil {
		return "", err
	}

	dig, err := plan.Digest()
	if err != nil {
		return "", err
	}

	key := PlanKey(plan.ApplicationID, plan.Variant)

	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: ContentTypePlan,
		Metadata: map[string]string{
			"digest":  dig.String(),
			"variant": plan.Variant,
		},
	})
	if err != nil {
		return "", err
	}

	if _, err = w.Write(b); err != nil {
		_ = w.Close()
		return "", err
	}

	return key, w.Close()
}
