package access

import "context"

type Role string

const (
	RoleBouncer   Role = "bouncer"
	RoleWaiter    Role = "waiter"
	RoleClubOwner Role = "clubowner"
	RoleAdmin     Role = "admin"
)

// Staff is the identity a request acts under, extracted from the auth token.
type Staff struct {
	ID     string
	Role   Role
	ClubID string
}

// OwnerLookup resolves the current owner of a club. Ownership is checked
// fresh on every call, never cached, so a transferred club locks the old
// owner out immediately.
type OwnerLookup interface {
	ClubOwner(ctx context.Context, clubID string) (string, error)
}

type Policy struct {
	owners OwnerLookup
}

func NewPolicy(owners OwnerLookup) *Policy {
	return &Policy{owners: owners}
}

// CanAct reports whether staff may act on purchases belonging to clubID.
// Bouncers and waiters are bound to their assigned club; club owners to
// clubs they actually own. Every other role, and every missing assignment,
// denies.
func (p *Policy) CanAct(ctx context.Context, staff Staff, clubID string) (bool, error) {
	if clubID == "" {
		return false, nil
	}

	switch staff.Role {
	case RoleBouncer, RoleWaiter:
		return staff.ClubID == clubID, nil
	case RoleClubOwner:
		owner, err := p.owners.ClubOwner(ctx, clubID)
		if err != nil {
			return false, err
		}
		return owner != "" && owner == staff.ID, nil
	default:
		return false, nil
	}
}
