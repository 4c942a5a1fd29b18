package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Yash-SD99/Echoing-Hearts/database"
	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(database.MemoryPath, database.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.Conn
}

func createUser(t *testing.T, db *sql.DB, username string) *models.User {
	t.Helper()

	ctx := context.Background()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Language:     "en",
	}
	require.NoError(t, NewSQLiteUserRepo(db).Create(ctx, u))
	require.NoError(t, NewSQLiteProfileRepo(db).Create(ctx, &models.Profile{
		UserID:      u.ID,
		DisplayName: username + "_anon",
		Avatar:      models.AvatarFemale,
	}))
	return u
}
