package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuditLogRoundTrip(t *testing.T) {
	db := openServiceTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)

	ctx := context.Background()
	userID := "user-1"

	err = audit.Log(ctx, AuditEntry{
		UserID:      &userID,
		WorkspaceID: "ws-1",
		Action:      "workspace.create",
		Resource:    "ws-1",
		Result:      "success",
		Metadata:    map[string]any{"name": "Engineering"},
	})
	require.NoError(t, err)

	err = audit.Log(ctx, AuditEntry{
		WorkspaceID: "ws-1",
		Action:      "workspace.update",
		Resource:    "ws-1",
		Result:      "success",
	})
	require.NoError(t, err)

	logs, err := audit.ListByWorkspace(ctx, "ws-1", 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	var withMeta, anonymous bool
	for _, log := range logs {
		if log.Action == "workspace.create" {
			withMeta = true
			require.NotNil(t, log.UserID)
			require.Equal(t, userID, *log.UserID)

			var meta map[string]any
			require.NoError(t, json.Unmarshal(log.Metadata, &meta))
			require.Equal(t, "Engineering", meta["name"])
		}
		if log.Action == "workspace.update" {
			anonymous = true
			require.Nil(t, log.UserID)
		}
	}
	require.True(t, withMeta)
	require.True(t, anonymous)
}

func TestAuditLogRequiresActionAndResult(t *testing.T) {
	db := openServiceTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, audit.Log(context.Background(), AuditEntry{Result: "success"}))
	require.Error(t, audit.Log(context.Background(), AuditEntry{Action: "task.create"}))
}
