package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

func TestConnectFallsBackToInMemorySQLite(t *testing.T) {
	db, err := ConnectSQLite("file:database_test?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	user := models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleInstructor}
	require.NoError(t, db.Create(&user).Error)
	require.NotZero(t, user.ID)
}

func TestConnectSQLiteEnforcesForeignKeys(t *testing.T) {
	db, err := ConnectSQLite("file:database_fk_test?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	require.Equal(t, 1, enabled)

	orphan := models.Course{Title: "Orphan", InstructorID: 404}
	require.Error(t, db.Create(&orphan).Error)
}

func TestConnectPostgresRequiresDSN(t *testing.T) {
	_, err := ConnectPostgres("")
	require.Error(t, err)
}

func TestConnectRedisRequiresURL(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "")
	require.Error(t, err)
}

func TestConnectRedisPingsServer(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), "redis://"+server.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "probe", "ok", 0).Err())
	server.CheckGet(t, "probe", "ok")
}

func TestConnectRedisFailsWhenUnreachable(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	_, err := ConnectRedis(context.Background(), "redis://"+addr)
	require.Error(t, err)
}
