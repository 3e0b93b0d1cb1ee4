package main

import (
	"bytes"
	"context"
	"testing"

	"clubhub/internal/models"
	"clubhub/internal/repository"
	"clubhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRole(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	user := testutil.CreateUser(t, db, "officer@ucmerced.edu", models.RoleStudent)
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, users, []string{"set-role", "Officer@UCMerced.edu", "club"}, &out))
	assert.Contains(t, out.String(), "student -> club")

	reloaded, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleClub, reloaded.Role)

	out.Reset()
	require.NoError(t, run(ctx, users, []string{"set-role", "officer@ucmerced.edu", "club"}, &out))
	assert.Contains(t, out.String(), "already club")

	assert.Error(t, run(ctx, users, []string{"set-role", "officer@ucmerced.edu", "dean"}, &out))
	assert.ErrorContains(t, run(ctx, users, []string{"set-role", "ghost@ucmerced.edu", "admin"}, &out), "no user")
	assert.ErrorIs(t, run(ctx, users, []string{"set-role", "officer@ucmerced.edu"}, &out), errUsage)
	assert.ErrorIs(t, run(ctx, users, []string{"promote"}, &out), errUsage)
}

func TestListAdmins(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, users, []string{"list-admins"}, &out))
	assert.Equal(t, "No admins found\n", out.String())

	testutil.CreateUser(t, db, "root@ucmerced.edu", models.RoleAdmin)
	testutil.CreateUser(t, db, "s@ucmerced.edu", models.RoleStudent)

	out.Reset()
	require.NoError(t, run(ctx, users, []string{"list-admins"}, &out))
	assert.Contains(t, out.String(), "root@ucmerced.edu")
	assert.NotContains(t, out.String(), "s@ucmerced.edu")
}
