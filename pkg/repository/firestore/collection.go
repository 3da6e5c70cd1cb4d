package firestore

import (
	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/m-mizutani/goerr/v2"
)

// Collection names shared with the patient-facing intake app
const (
	UsersCollection       = "users"
	SubmissionsCollection = "symptom_submissions"
)

// CollectionName applies the optional environment prefix to a collection
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

const countAlias = "count"

// countResult extracts the count aggregation value
func countResult(res firestore.AggregationResult) (int64, error) {
	raw, ok := res[countAlias]
	if !ok {
		return 0, goerr.New("count aggregation missing from result")
	}
	v, ok := raw.(*firestorepb.Value)
	if !ok {
		return 0, goerr.New("unexpected count aggregation type", goerr.V("value", raw))
	}
	return v.GetIntegerValue(), nil
}
