package migrations

import (
	"testing"

	"github.com/pocketbase/pocketbase/tests"
	"github.com/stretchr/testify/require"
)

func TestEnsureSiteCollections_Idempotent(t *testing.T) {
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	defer app.Cleanup()

	require.NoError(t, EnsureSiteCollections(app))
	require.NoError(t, EnsureSiteCollections(app))
	require.NoError(t, EnsureAuditLogs(app))
	require.NoError(t, EnsureAuditLogs(app))

	for _, name := range []string{"registrations", "subscribers", "events", "audit_logs"} {
		collection, err := app.FindCollectionByNameOrId(name)
		require.NoError(t, err, name)
		require.NotNil(t, collection.Fields.GetByName("created"), name)
	}

	registrations, err := app.FindCollectionByNameOrId("registrations")
	require.NoError(t, err)
	for _, idx := range registrations.Indexes {
		require.NotContains(t, idx, "UNIQUE")
	}
}
