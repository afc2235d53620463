package domain

// Permission is a codename checked by the permission enforcer.
type Permission string

const (
	// PermCanMarkReturned gates renewals and every create/update/delete view.
	PermCanMarkReturned Permission = "can_mark_returned"
)

// GrantSubjectType distinguishes grants held directly by a user from group grants.
type GrantSubjectType string

const (
	GrantSubjectUser  GrantSubjectType = "USER"
	GrantSubjectGroup GrantSubjectType = "GROUP"
)

// Grant assigns a permission to a user or group.
type Grant struct {
	SubjectType GrantSubjectType
	Subject     string
	Permission  Permission
}

// Membership places a user in a named group.
type Membership struct {
	UserID string
	Group  string
}
