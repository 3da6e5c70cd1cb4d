package cli_test

import (
	"testing"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
	"github.com/oncowatch/oncowatch/pkg/cli"
)

func TestIndexConfig(t *testing.T) {
	testCases := []struct {
		name        string
		prefix      string
		submissions string
		users       string
	}{
		{"no prefix", "", "symptom_submissions", "users"},
		{"prefixed", "staging", "staging_symptom_submissions", "staging_users"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := cli.IndexConfig(tc.prefix)
			gt.A(t, cfg.Collections).Length(2).Required()
			gt.V(t, cfg.Collections[0].Name).Equal(tc.submissions)
			gt.V(t, cfg.Collections[1].Name).Equal(tc.users)
		})
	}

	t.Run("latest submission query is descending", func(t *testing.T) {
		idx := cli.IndexConfig("").Collections[0].Indexes[1]
		gt.V(t, idx.Fields).Equal([]fireconf.IndexField{
			{Path: "patient_id", Order: fireconf.OrderAscending},
			{Path: "timestamp", Order: fireconf.OrderDescending},
		})
	})
}

func TestIndexChanges(t *testing.T) {
	latest := fireconf.Index{Fields: []fireconf.IndexField{
		{Path: "patient_id", Order: fireconf.OrderAscending},
		{Path: "timestamp", Order: fireconf.OrderDescending},
	}}
	stale := fireconf.Index{Fields: []fireconf.IndexField{
		{Path: "role", Order: fireconf.OrderDescending},
		{Path: "displayName", Order: fireconf.OrderAscending},
	}}

	t.Run("no differences", func(t *testing.T) {
		gt.A(t, cli.IndexChanges(&fireconf.DiffResult{})).Length(0)
	})

	t.Run("adds and deletes are listed per index", func(t *testing.T) {
		changes := cli.IndexChanges(&fireconf.DiffResult{
			Collections: []fireconf.CollectionDiff{
				{Name: "symptom_submissions", Action: fireconf.ActionModify, IndexesToAdd: []fireconf.Index{latest}},
				{Name: "users", Action: fireconf.ActionModify, IndexesToDelete: []fireconf.Index{stale}},
			},
		})
		gt.A(t, changes).Length(2).Required()
		gt.V(t, changes[0].Collection).Equal("symptom_submissions")
		gt.V(t, changes[0].Action).Equal(fireconf.ActionAdd)
		gt.S(t, changes[0].Fields).Equal("patient_id ASCENDING, timestamp DESCENDING")
		gt.V(t, changes[1].Collection).Equal("users")
		gt.V(t, changes[1].Action).Equal(fireconf.ActionDelete)
	})
}
