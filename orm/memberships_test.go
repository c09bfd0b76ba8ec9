package orm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndListMemberships(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	project := seedProject(t, db, "acme")
	alice := seedUser(t, db, "alice", true, false)
	bob := seedUser(t, db, "bob", true, false)

	_, err := db.AddMember(ctx, project.ID, alice.ID, true)
	require.NoError(t, err)
	_, err = db.AddMember(ctx, project.ID, bob.ID, false)
	require.NoError(t, err)

	memberships, err := db.ListMemberships(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 2)

	byLogin := map[string]ProjectMembership{}
	for _, membership := range memberships {
		require.NotNil(t, membership.User)
		require.False(t, membership.JoinedAt.IsZero())
		byLogin[membership.User.Login] = membership
	}

	assert.True(t, byLogin["alice"].IsLead)
	assert.False(t, byLogin["bob"].IsLead)
}

func TestRemoveMember(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	project := seedProject(t, db, "acme")
	alice := seedUser(t, db, "alice", true, false)

	_, err := db.AddMember(ctx, project.ID, alice.ID, false)
	require.NoError(t, err)

	require.NoError(t, db.RemoveMember(ctx, project.ID, alice.ID))

	ids, err := db.MemberIDs(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	err = db.RemoveMember(ctx, project.ID, alice.ID)

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSetLead(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	project := seedProject(t, db, "acme")
	alice := seedUser(t, db, "alice", true, false)

	_, err := db.AddMember(ctx, project.ID, alice.ID, false)
	require.NoError(t, err)

	leads, err := db.Leads(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, leads)

	require.NoError(t, db.SetLead(ctx, project.ID, alice.ID, true))

	leads, err = db.Leads(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, alice.ID, leads[0].ID)

	err = db.SetLead(ctx, project.ID, 9999, true)

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAddMemberValidation(t *testing.T) {
	db := newTestDB(t)

	_, err := db.AddMember(context.Background(), 0, 0, false)

	var badInput *BadInputError
	assert.ErrorAs(t, err, &badInput)
}
