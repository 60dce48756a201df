// Package auth computes per-action, per-role authorization decisions.
// Decisions are pure functions of the acting identity and the target, so
// they are testable without a live request. Every ambiguous input
// (missing role, unparseable target role) denies.
package auth

// Role ids are lookup-table keys of user_types, not an enum. The three
// tiers the rules compare against are fixed by the product.
const (
	RoleAdmin   = 1
	RoleManager = 2
	RoleAgent   = 3
)

// Actor is the acting identity resolved from the request token.
type Actor struct {
	UserID        int
	Role          int
	Authenticated bool
}

// CanCreateUser reports whether actor may create a user of targetRole.
// Unauthenticated callers are always denied. A nil targetRole is the
// untyped path open to any authenticated actor; the service assigns the
// default role. An explicit role needs an elevated caller.
func CanCreateUser(actor Actor, targetRole *int) bool {
	if !actor.Authenticated {
		return false
	}
	if targetRole == nil {
		return true
	}
	switch actor.Role {
	case RoleAdmin:
		return *targetRole == RoleManager || *targetRole == RoleAgent
	case RoleManager:
		return *targetRole == RoleAgent
	}
	return false
}

// CanUpdateUser reports whether actor may update the user identified by
// targetID holding targetRole, setting the role to newRole. A nil
// newRole keeps the current role; that is only acceptable on the
// self-update path, every cross-user mutation must state the new role
// explicitly and fails closed otherwise.
func CanUpdateUser(actor Actor, targetID, targetRole int, newRole *int) bool {
	if !actor.Authenticated {
		return false
	}
	if actor.UserID == targetID {
		return newRole == nil || *newRole == actor.Role
	}
	if newRole == nil {
		return false
	}
	switch actor.Role {
	case RoleAdmin:
		return (targetRole == RoleManager || targetRole == RoleAgent) &&
			(*newRole == RoleManager || *newRole == RoleAgent)
	case RoleManager:
		return targetRole == RoleAgent && *newRole == RoleAgent
	}
	return false
}

// CanMutateListingResource reports whether actor may mutate a listing's
// attached resources (images, detail record). Admins and managers may
// mutate any listing; agents only their own. Reads are always allowed
// and never reach this check.
func CanMutateListingResource(actor Actor, ownerID int) bool {
	if !actor.Authenticated {
		return false
	}
	if actor.Role == RoleAdmin || actor.Role == RoleManager {
		return true
	}
	return actor.Role == RoleAgent && actor.UserID == ownerID
}

// CanManageReference reports whether actor may create, update or delete
// lookup rows (sectors, locations, heating/planning/construction/surface
// types and the like). Listing them is public.
func CanManageReference(actor Actor) bool {
	return actor.Authenticated && (actor.Role == RoleAdmin || actor.Role == RoleManager)
}

// CanApproveRequest reports whether actor may flip a request's approved
// flag. Same tier as reference management.
func CanApproveRequest(actor Actor) bool {
	return CanManageReference(actor)
}
