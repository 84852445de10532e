package webhooklog

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO webhook_logs`).
		WithArgs(pgxmock.AnyArg(), "n8n", "lead_created", `{"session_id":"s-1"}`,
			"success", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewPostgresStoreWithDB(mock)
	err = store.Append(context.Background(), Entry{
		Source: "n8n",
		Event:  "lead_created",
		Data:   `{"session_id":"s-1"}`,
		Status: StatusSuccess,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Append_KeepsCallerID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO webhook_logs`).
		WithArgs("fixed-id", "clinic_sync", "sync_completed", `{}`,
			"success", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewPostgresStoreWithDB(mock)
	err = store.Append(context.Background(), Entry{
		ID:     "fixed-id",
		Source: "clinic_sync",
		Event:  "sync_completed",
		Data:   `{}`,
		Status: StatusSuccess,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStore_Append(t *testing.T) {
	store := NewMemoryStore()

	err := store.Append(context.Background(), Entry{
		Source: "clinic_sync",
		Event:  "sync_failed",
		Status: StatusError,
		Error:  "feed timeout",
	})
	require.NoError(t, err)

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].CreatedAt.IsZero())
	assert.Equal(t, "sync_failed", entries[0].Event)
	assert.Equal(t, StatusError, entries[0].Status)
	assert.Equal(t, "feed timeout", entries[0].Error)
}
