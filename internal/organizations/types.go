// ABOUTME: Organization, membership and invite shapes returned by the remote
// ABOUTME: Field names follow the remote's snake_case rows

package organizations

import "time"

// Visibility values accepted when creating an organization.
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

// Membership status values.
const (
	StatusActive  = "active"
	StatusPending = "pending"
	StatusRemoved = "removed"
)

// Organization is one organization row.
type Organization struct {
	ID                      string     `json:"id"`
	Name                    string     `json:"name"`
	Visibility              string     `json:"visibility"`
	AllowMemberChatCreation bool       `json:"allow_member_chat_creation"`
	CreatedAt               time.Time  `json:"created_at"`
	DeletedAt               *time.Time `json:"deleted_at,omitempty"`
}

// NewOrganization is the body for creating an organization.
type NewOrganization struct {
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
}

// Update changes organization fields. Nil fields are left alone.
type Update struct {
	Name                    *string `json:"name,omitempty"`
	Visibility              *string `json:"visibility,omitempty"`
	AllowMemberChatCreation *bool   `json:"allow_member_chat_creation,omitempty"`
}

// Page is one page of the caller's organizations.
type Page struct {
	Organizations []Organization `json:"organizations"`
	TotalCount    int            `json:"totalCount"`
}

// Profile is the public part of a user profile.
type Profile struct {
	ID        string  `json:"id,omitempty"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// Member is a membership joined with the member's profile.
type Member struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	Profile        *Profile  `json:"user_profiles,omitempty"`
}

// Invite is a pending invitation.
type Invite struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	InvitedEmail   string    `json:"invited_email"`
	InvitedUserID  *string   `json:"invited_user_id,omitempty"`
	Role           string    `json:"role_to_assign"`
	Status         string    `json:"status"`
	InviteToken    string    `json:"invite_token,omitempty"`
	InvitedBy      string    `json:"invited_by_user_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Inviter        *Profile  `json:"invited_by_profile,omitempty"`
}

// JoinRequest is a pending membership awaiting admin approval.
type JoinRequest struct {
	Member
	UserEmail string `json:"user_email,omitempty"`
}

// Pending lists an organization's open invites and join requests.
type Pending struct {
	Invites  []Invite      `json:"invites"`
	Requests []JoinRequest `json:"requests"`
}

// Acceptance is returned when an invite is accepted.
type Acceptance struct {
	Message        string `json:"message"`
	MembershipID   string `json:"membershipId"`
	OrganizationID string `json:"organizationId"`
}

// InviteDetails identifies the organization an invite token belongs to.
type InviteDetails struct {
	OrganizationName string `json:"organizationName"`
	OrganizationID   string `json:"organizationId"`
}
