package entities

type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// CanEdit reports whether the role allows writes; viewers are read-only.
func (r Role) CanEdit() bool {
	return r == RoleOwner || r == RoleEditor
}

type MemberAction string

const (
	ActionCreate MemberAction = "create"
	ActionUpdate MemberAction = "update"
	ActionRemove MemberAction = "remove"
)

// Member is an access grant joined with its profile. Ref is the grant
// row id, ID the user id.
type Member struct {
	Ref       string `json:"ref,omitempty" db:"ref"`
	ID        string `json:"id" db:"id"`
	Username  string `json:"username" db:"username"`
	AvatarURL string `json:"avatar_url" db:"avatar_url"`
	Role      Role   `json:"role" db:"role"`
}

// Team is the derived, request-time view of a document's or project's
// member set: a capped preview plus the true count.
type Team struct {
	Members []Member `json:"members"`
	Count   int      `json:"count"`
}

// TeamPreviewSize caps how many members a team preview carries.
const TeamPreviewSize = 3

// PendingMember is one row of the team dialog's edit list, tagged with
// the action to apply on submit.
type PendingMember struct {
	Ref    string       `json:"ref,omitempty"`
	ID     string       `json:"id"`
	Role   Role         `json:"role"`
	Action MemberAction `json:"action,omitempty"`
}

// Grant is the payload for inserting a new member row.
type Grant struct {
	DocumentID string
	ProjectID  string
	UserID     string
	Role       Role
}

// RoleChange updates the role of an existing grant row.
type RoleChange struct {
	Ref  string `json:"ref"`
	Role Role   `json:"role"`
}

// ReconcileResult reports what a member reconciliation actually did, so
// callers can patch their cached views without refetching.
type ReconcileResult struct {
	Insert []Member     `json:"insert"`
	Update []RoleChange `json:"update"`
	Remove []string     `json:"remove"`
}

func (r ReconcileResult) Empty() bool {
	return len(r.Insert) == 0 && len(r.Update) == 0 && len(r.Remove) == 0
}
