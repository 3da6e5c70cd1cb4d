package cli

import (
	"context"
	"strings"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/cli/config"
	"github.com/oncowatch/oncowatch/pkg/repository/firestore"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
	"github.com/oncowatch/oncowatch/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// defaultDatabaseID is used when no Firestore database is configured
const defaultDatabaseID = "(default)"

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := repoCfg.Flags()
	flags = append(flags, &cli.BoolFlag{
		Name:        "dry-run",
		Usage:       "Print the index plan without applying it",
		Destination: &dryRun,
	})

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create the Firestore composite indexes the dashboard queries need",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if repoCfg.ProjectID() == "" {
				return goerr.Wrap(config.ErrMissingFirestoreProj, "migrate needs a Firestore project")
			}
			databaseID := repoCfg.DatabaseID()
			if databaseID == "" {
				databaseID = defaultDatabaseID
			}

			desired := indexConfig(repoCfg.CollectionPrefix())
			client, err := fireconf.New(ctx, repoCfg.ProjectID(), databaseID, desired,
				fireconf.WithLogger(logging.From(ctx)),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client",
					goerr.V("project_id", repoCfg.ProjectID()),
					goerr.V("database_id", databaseID))
			}
			defer safe.Close(ctx, client)

			if dryRun {
				return planIndexes(ctx, client, desired)
			}

			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply index migration")
			}
			logging.From(ctx).Info("indexes migrated", "collections", len(desired.Collections))
			return nil
		},
	}
}

// planIndexes logs the index changes a migration would make
func planIndexes(ctx context.Context, client *fireconf.Client, desired *fireconf.Config) error {
	names := make([]string, 0, len(desired.Collections))
	for _, col := range desired.Collections {
		names = append(names, col.Name)
	}

	current, err := client.Import(ctx, names...)
	if err != nil {
		return goerr.Wrap(err, "failed to read current indexes")
	}
	diff, err := client.DiffConfigs(current)
	if err != nil {
		return goerr.Wrap(err, "failed to diff indexes")
	}

	changes := indexChanges(diff)
	if len(changes) == 0 {
		logging.From(ctx).Info("indexes up to date")
		return nil
	}
	for _, ch := range changes {
		logging.From(ctx).Info("planned index change",
			"collection", ch.Collection,
			"action", ch.Action,
			"fields", ch.Fields,
		)
	}
	return nil
}

// indexChange is one index a migration would create or drop
type indexChange struct {
	Collection string
	Action     fireconf.DiffAction
	Fields     string
}

func indexChanges(diff *fireconf.DiffResult) []indexChange {
	var changes []indexChange
	for _, col := range diff.Collections {
		for _, idx := range col.IndexesToAdd {
			changes = append(changes, indexChange{Collection: col.Name, Action: fireconf.ActionAdd, Fields: indexFields(idx)})
		}
		for _, idx := range col.IndexesToDelete {
			changes = append(changes, indexChange{Collection: col.Name, Action: fireconf.ActionDelete, Fields: indexFields(idx)})
		}
	}
	return changes
}

func indexFields(idx fireconf.Index) string {
	parts := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		parts = append(parts, f.Path+" "+string(f.Order))
	}
	return strings.Join(parts, ", ")
}

func ascending(path string) fireconf.IndexField {
	return fireconf.IndexField{Path: path, Order: fireconf.OrderAscending}
}

func descending(path string) fireconf.IndexField {
	return fireconf.IndexField{Path: path, Order: fireconf.OrderDescending}
}

// indexConfig lists one index per ordered repository query
func indexConfig(prefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: firestore.CollectionName(prefix, firestore.SubmissionsCollection),
				Indexes: []fireconf.Index{
					{Fields: []fireconf.IndexField{ascending("patient_id"), ascending("timestamp")}},
					{Fields: []fireconf.IndexField{ascending("patient_id"), descending("timestamp")}},
					{Fields: []fireconf.IndexField{ascending("triage_level"), descending("timestamp")}},
				},
			},
			{
				Name: firestore.CollectionName(prefix, firestore.UsersCollection),
				Indexes: []fireconf.Index{
					{Fields: []fireconf.IndexField{ascending("role"), ascending("__name__")}},
				},
			},
		},
	}
}
