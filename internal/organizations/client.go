// ABOUTME: Organizations sub-client addressing the remote's REST-style organization paths
// ABOUTME: List results are normalized so successful calls never carry nil slices

// Package organizations manages organizations, members, invites and join
// requests.
package organizations

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/2389/edgecall/internal/apiclient"
)

const base = "organizations"

// Client is the organizations sub-client.
type Client struct {
	sender apiclient.Sender
	logger *slog.Logger
}

// New builds a Client over sender.
func New(sender apiclient.Sender, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{sender: sender, logger: logger.With("component", "organizations")}
}

// Create creates an organization. Visibility defaults to private.
func (c *Client) Create(ctx context.Context, org NewOrganization) (apiclient.Result[Organization], error) {
	if org.Visibility == "" {
		org.Visibility = VisibilityPrivate
	}
	return apiclient.Post[Organization](ctx, c.sender, base, org)
}

// Update changes an organization's details.
func (c *Client) Update(ctx context.Context, orgID string, upd Update) (apiclient.Result[Organization], error) {
	return apiclient.Put[Organization](ctx, c.sender, apiclient.Path(base, orgID), upd)
}

// List returns a page of organizations the caller is an active member of.
// page and limit are omitted when zero.
func (c *Client) List(ctx context.Context, page, limit int) (apiclient.Result[Page], error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	res, err := apiclient.Get[Page](ctx, c.sender, base, apiclient.WithQuery(q))
	if err != nil {
		return res, err
	}
	if res.OK() && res.Data.Organizations == nil {
		res.Data.Organizations = []Organization{}
	}
	return res, nil
}

// Details fetches one organization.
func (c *Client) Details(ctx context.Context, orgID string) (apiclient.Result[Organization], error) {
	return apiclient.Get[Organization](ctx, c.sender, apiclient.Path(base, orgID))
}

// Members lists an organization's members with their profiles.
func (c *Client) Members(ctx context.Context, orgID string) (apiclient.Result[[]Member], error) {
	res, err := apiclient.Get[[]Member](ctx, c.sender, apiclient.Path(base, orgID, "members"))
	if err != nil {
		return res, err
	}
	if res.OK() && res.Data == nil {
		res.Data = []Member{}
	}
	return res, nil
}

// InviteByEmail invites an email address with role.
func (c *Client) InviteByEmail(ctx context.Context, orgID, email, role string) (apiclient.Result[Invite], error) {
	body := map[string]string{"email": email, "role": role}
	return apiclient.Post[Invite](ctx, c.sender, apiclient.Path(base, orgID, "invites"), body)
}

// InviteByUserID invites a known user with role.
func (c *Client) InviteByUserID(ctx context.Context, orgID, userID, role string) (apiclient.Result[Invite], error) {
	body := map[string]string{"invitedUserId": userID, "role": role}
	return apiclient.Post[Invite](ctx, c.sender, apiclient.Path(base, orgID, "invites"), body)
}

// AcceptInvite accepts the invite identified by token.
func (c *Client) AcceptInvite(ctx context.Context, token string) (apiclient.Result[Acceptance], error) {
	return apiclient.Post[Acceptance](ctx, c.sender, apiclient.Path(base, "invites", token, "accept"), nil)
}

// DeclineInvite declines the invite identified by token.
func (c *Client) DeclineInvite(ctx context.Context, token string) (apiclient.Result[struct{}], error) {
	return apiclient.Post[struct{}](ctx, c.sender, apiclient.Path(base, "invites", token, "decline"), nil)
}

// InviteDetails identifies the organization behind an invite token.
func (c *Client) InviteDetails(ctx context.Context, token string) (apiclient.Result[InviteDetails], error) {
	return apiclient.Get[InviteDetails](ctx, c.sender, apiclient.Path(base, "invites", token, "details"))
}

// CancelInvite withdraws a pending invite.
func (c *Client) CancelInvite(ctx context.Context, orgID, inviteID string) (apiclient.Result[struct{}], error) {
	return apiclient.Delete[struct{}](ctx, c.sender, apiclient.Path(base, orgID, "invites", inviteID))
}

// RequestToJoin asks to join a public organization.
func (c *Client) RequestToJoin(ctx context.Context, orgID string) (apiclient.Result[Member], error) {
	return apiclient.Post[Member](ctx, c.sender, apiclient.Path(base, orgID, "requests"), nil)
}

// ApproveJoinRequest activates a pending membership.
func (c *Client) ApproveJoinRequest(ctx context.Context, membershipID string) (apiclient.Result[struct{}], error) {
	return c.setStatus(ctx, membershipID, StatusActive)
}

// DenyJoinRequest removes a pending membership.
func (c *Client) DenyJoinRequest(ctx context.Context, membershipID string) (apiclient.Result[struct{}], error) {
	return c.setStatus(ctx, membershipID, StatusRemoved)
}

func (c *Client) setStatus(ctx context.Context, membershipID, status string) (apiclient.Result[struct{}], error) {
	c.logger.Debug("updating membership status", "membership_id", membershipID, "status", status)
	body := map[string]string{"status": status}
	return apiclient.Put[struct{}](ctx, c.sender, apiclient.Path(base, "members", membershipID, "status"), body)
}

// UpdateMemberRole changes a member's role.
func (c *Client) UpdateMemberRole(ctx context.Context, membershipID, role string) (apiclient.Result[struct{}], error) {
	body := map[string]string{"role": role}
	return apiclient.Put[struct{}](ctx, c.sender, apiclient.Path(base, "members", membershipID, "role"), body)
}

// RemoveMember removes a membership.
func (c *Client) RemoveMember(ctx context.Context, membershipID string) (apiclient.Result[struct{}], error) {
	return apiclient.Delete[struct{}](ctx, c.sender, apiclient.Path(base, "members", membershipID))
}

// Leave removes the caller from an organization.
func (c *Client) Leave(ctx context.Context, orgID string) (apiclient.Result[struct{}], error) {
	return apiclient.Delete[struct{}](ctx, c.sender, apiclient.Path(base, orgID, "members", "leave"))
}

// Delete soft-deletes an organization.
func (c *Client) Delete(ctx context.Context, orgID string) (apiclient.Result[struct{}], error) {
	return apiclient.Delete[struct{}](ctx, c.sender, apiclient.Path(base, orgID))
}

// Pending lists open invites and join requests. Both lists are non-nil on success.
func (c *Client) Pending(ctx context.Context, orgID string) (apiclient.Result[Pending], error) {
	res, err := apiclient.Get[Pending](ctx, c.sender, apiclient.Path(base, orgID, "pending"))
	if err != nil {
		return res, err
	}
	if res.OK() {
		if res.Data.Invites == nil {
			res.Data.Invites = []Invite{}
		}
		if res.Data.Requests == nil {
			res.Data.Requests = []JoinRequest{}
		}
	}
	return res, nil
}
