package auth

import "opennotebook/internal/domain/models"

// ResolveOwnershipContext derives the effective owner for the request.
//
// Team selection always wins: a non-empty team header is an explicit
// override, so the context is team-owned and UserID stays nil. Otherwise
// the context is personal. CreatedBy records the acting identity either
// way. Pure function: identical inputs always yield identical output.
func ResolveOwnershipContext(identity *models.Identity, teamID string) models.OwnershipContext {
	var userID *string
	if identity != nil {
		userID = &identity.ID
	}

	if teamID != "" {
		return models.OwnershipContext{
			TeamID:    &teamID,
			CreatedBy: userID,
		}
	}
	return models.OwnershipContext{
		UserID:    userID,
		CreatedBy: userID,
	}
}

// ResolveOwnershipFilter derives the listing predicate. Both fields are
// populated independently - the team header does not null out the personal
// id here - so one listing query returns the union of personal and
// team-owned items.
func ResolveOwnershipFilter(identity *models.Identity, teamID string) models.OwnershipFilter {
	var f models.OwnershipFilter
	if identity != nil {
		f.UserID = &identity.ID
	}
	if teamID != "" {
		f.TeamID = &teamID
	}
	return f
}

// CanRead decides whether the caller may see a fetched resource. Allowed
// when the caller's personal id matches the stored owner, the caller's
// selected team matches the stored team, or the resource predates
// ownership entirely (both stored fields unset - legacy rows stay
// readable by everyone for backward compatibility).
//
// The scope is the same OwnershipFilter used to scope listings, so a row
// a listing would return always passes this check for the same caller.
// Evaluated exactly once per single-resource fetch, after the fetch and
// before returning data; listings never use this.
func CanRead(owner models.ResourceOwner, scope models.OwnershipFilter) bool {
	if scope.UserID != nil && owner.UserID != nil && *scope.UserID == *owner.UserID {
		return true
	}
	if scope.TeamID != nil && owner.TeamID != nil && *scope.TeamID == *owner.TeamID {
		return true
	}
	return owner.UserID == nil && owner.TeamID == nil
}
