package models

// OwnershipContext is the effective owner on whose behalf the current
// request creates or reads data. It is request-scoped and never persisted
// as-is.
//
// Invariant: UserID and TeamID are mutually exclusive. Both nil means the
// request is unauthenticated (or the deployment predates multi-tenancy).
type OwnershipContext struct {
	UserID    *string // personal owner
	TeamID    *string // team owner, from the X-Team-ID header
	CreatedBy *string // acting identity, regardless of personal/team mode
}

// OwnershipFilter scopes list queries to rows owned by the caller's
// personal id OR the caller's currently selected team. Unlike
// OwnershipContext, both fields may be set at once so a single listing
// returns the union of personal and team items.
type OwnershipFilter struct {
	UserID *string
	TeamID *string
}

// Empty reports whether the filter constrains nothing. Listings with an
// empty filter return every row, which is the pre-multi-tenancy behavior.
func (f OwnershipFilter) Empty() bool {
	return f.UserID == nil && f.TeamID == nil
}

// ResourceOwner carries the stored ownership fields of a record. A record
// is personal (UserID set), team-owned (TeamID set) or legacy (both nil,
// created before ownership fields existed).
type ResourceOwner struct {
	UserID *string
	TeamID *string
}
