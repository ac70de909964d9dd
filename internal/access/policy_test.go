package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightPassAPI/internal/access"
)

type fakeOwners map[string]string

func (f fakeOwners) ClubOwner(_ context.Context, clubID string) (string, error) {
	return f[clubID], nil
}

func TestPolicyBoundStaff(t *testing.T) {
	p := access.NewPolicy(fakeOwners{})
	ctx := context.Background()

	bouncer := access.Staff{ID: "s1", Role: access.RoleBouncer, ClubID: "club-a"}
	waiter := access.Staff{ID: "s2", Role: access.RoleWaiter, ClubID: "club-a"}

	for _, st := range []access.Staff{bouncer, waiter} {
		ok, err := p.CanAct(ctx, st, "club-a")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = p.CanAct(ctx, st, "club-b")
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestPolicyOwner(t *testing.T) {
	p := access.NewPolicy(fakeOwners{"club-a": "owner-1"})
	ctx := context.Background()

	owner := access.Staff{ID: "owner-1", Role: access.RoleClubOwner}

	ok, err := p.CanAct(ctx, owner, "club-a")
	require.NoError(t, err)
	assert.True(t, ok)

	// Not the owner of club-b.
	ok, err = p.CanAct(ctx, owner, "club-b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPolicyDeniesByDefault(t *testing.T) {
	p := access.NewPolicy(fakeOwners{"club-a": "owner-1"})
	ctx := context.Background()

	// Admin has no scan privileges, the rules are exhaustive.
	ok, err := p.CanAct(ctx, access.Staff{ID: "a1", Role: access.RoleAdmin, ClubID: "club-a"}, "club-a")
	require.NoError(t, err)
	assert.False(t, ok)

	// Unknown role.
	ok, err = p.CanAct(ctx, access.Staff{ID: "x", Role: "dj", ClubID: "club-a"}, "club-a")
	require.NoError(t, err)
	assert.False(t, ok)

	// Empty club id always denies.
	ok, err = p.CanAct(ctx, access.Staff{ID: "s1", Role: access.RoleBouncer, ClubID: ""}, "")
	require.NoError(t, err)
	assert.False(t, ok)
}
