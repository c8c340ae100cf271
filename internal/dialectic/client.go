// ABOUTME: Dialectic sub-client, one method per action on the dialectic-service endpoint
// ABOUTME: Domain listings are public; project creation is multipart with an optional prompt file

// Package dialectic drives projects, sessions and contributions through the
// dialectic service's single multiplexing endpoint.
package dialectic

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/2389/edgecall/internal/action"
	"github.com/2389/edgecall/internal/apiclient"
)

// Endpoint is the multiplexing endpoint for every dialectic action.
const Endpoint = "dialectic-service"

// Client is the dialectic sub-client.
type Client struct {
	d *action.Dispatcher
}

// New builds a Client posting to Endpoint through sender.
func New(sender apiclient.Sender, logger *slog.Logger) *Client {
	return &Client{d: action.NewDispatcher(sender, Endpoint, logger)}
}

type projectRef struct {
	ProjectID string `json:"projectId"`
}

type stageRef struct {
	StageAssociation string `json:"stageAssociation"`
}

// ListDomainTags lists selectable domain tags. No credential is sent.
func (c *Client) ListDomainTags(ctx context.Context) (apiclient.Result[[]DomainTag], error) {
	return action.Call[[]DomainTag](ctx, c.d, action.ListAvailableDomainTags, nil, apiclient.Public())
}

// ListAvailableDomains lists domains, optionally filtered to one stage. No
// credential is sent.
func (c *Client) ListAvailableDomains(ctx context.Context, stageAssociation string) (apiclient.Result[[]DomainDescriptor], error) {
	var payload any
	if stageAssociation != "" {
		payload = stageRef{StageAssociation: stageAssociation}
	}
	return action.Call[[]DomainDescriptor](ctx, c.d, action.ListAvailableDomains, payload, apiclient.Public())
}

// ListDomainOverlays lists overlays for a stage.
func (c *Client) ListDomainOverlays(ctx context.Context, stageAssociation string) (apiclient.Result[[]DomainOverlay], error) {
	return action.Call[[]DomainOverlay](ctx, c.d, action.ListAvailableDomainOverlays, stageRef{StageAssociation: stageAssociation})
}

// ListDomains lists every domain.
func (c *Client) ListDomains(ctx context.Context) (apiclient.Result[[]Domain], error) {
	return action.Call[[]Domain](ctx, c.d, action.ListDomains, nil)
}

// FetchProcessTemplate returns a process template as raw JSON.
func (c *Client) FetchProcessTemplate(ctx context.Context, templateID string) (apiclient.Result[json.RawMessage], error) {
	payload := struct {
		TemplateID string `json:"templateId"`
	}{templateID}
	return action.Call[json.RawMessage](ctx, c.d, action.FetchProcessTemplate, payload)
}

// CreateProject creates a project. The request is multipart so a prompt
// file can ride along.
func (c *Client) CreateProject(ctx context.Context, p NewProject) (apiclient.Result[Project], error) {
	form := apiclient.NewForm().Field("projectName", p.ProjectName)
	if p.InitialUserPrompt != "" {
		form.Field("initialUserPromptText", p.InitialUserPrompt)
	}
	if p.SelectedDomainID != "" {
		form.Field("selectedDomainId", p.SelectedDomainID)
	}
	if p.SelectedDomainOverlayID != "" {
		form.Field("selectedDomainOverlayId", p.SelectedDomainOverlayID)
	}
	if p.PromptFile != nil {
		form.File("promptFile", p.PromptFile.Name, p.PromptFile.ContentType, p.PromptFile.Data)
	}
	return action.CallForm[Project](ctx, c.d, action.CreateProject, form)
}

// CloneProject copies a project and returns the clone.
func (c *Client) CloneProject(ctx context.Context, projectID string) (apiclient.Result[Project], error) {
	return action.Call[Project](ctx, c.d, action.CloneProject, projectRef{projectID})
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, projectID string) (apiclient.Result[struct{}], error) {
	return action.Call[struct{}](ctx, c.d, action.DeleteProject, projectRef{projectID})
}

// ExportProject packages a project and returns a download link.
func (c *Client) ExportProject(ctx context.Context, projectID string) (apiclient.Result[Export], error) {
	return action.Call[Export](ctx, c.d, action.ExportProject, projectRef{projectID})
}

// GetProjectDetails fetches a project with its sessions and resources.
func (c *Client) GetProjectDetails(ctx context.Context, projectID string) (apiclient.Result[Project], error) {
	return action.Call[Project](ctx, c.d, action.GetProjectDetails, projectRef{projectID})
}

// GetProjectResourceContent fetches a resource's content.
func (c *Client) GetProjectResourceContent(ctx context.Context, resourceID string) (apiclient.Result[ResourceContent], error) {
	payload := struct {
		ResourceID string `json:"resourceId"`
	}{resourceID}
	return action.Call[ResourceContent](ctx, c.d, action.GetProjectResourceContent, payload)
}

// ListProjects lists the caller's projects.
func (c *Client) ListProjects(ctx context.Context) (apiclient.Result[[]Project], error) {
	return action.Call[[]Project](ctx, c.d, action.ListProjects, nil)
}

// UpdateProjectInitialPrompt replaces a project's seed prompt.
func (c *Client) UpdateProjectInitialPrompt(ctx context.Context, projectID, prompt string) (apiclient.Result[Project], error) {
	payload := struct {
		ProjectID        string `json:"projectId"`
		NewInitialPrompt string `json:"newInitialPrompt"`
	}{projectID, prompt}
	return action.Call[Project](ctx, c.d, action.UpdateProjectInitialPrompt, payload)
}

// UpdateProjectDomain moves a project to another domain.
func (c *Client) UpdateProjectDomain(ctx context.Context, projectID, domainID string) (apiclient.Result[Project], error) {
	payload := struct {
		ProjectID        string `json:"projectId"`
		SelectedDomainID string `json:"selectedDomainId"`
	}{projectID, domainID}
	return action.Call[Project](ctx, c.d, action.UpdateProjectDomain, payload)
}

// GetStageRecipe returns a stage's recipe as raw JSON.
func (c *Client) GetStageRecipe(ctx context.Context, stageSlug string) (apiclient.Result[json.RawMessage], error) {
	payload := struct {
		StageSlug string `json:"stageSlug"`
	}{stageSlug}
	return action.Call[json.RawMessage](ctx, c.d, action.GetStageRecipe, payload)
}

// StartSession starts a working session on a project.
func (c *Client) StartSession(ctx context.Context, p StartSession) (apiclient.Result[Session], error) {
	return action.Call[Session](ctx, c.d, action.StartSession, p)
}

// UpdateSessionModels changes the models a session uses.
func (c *Client) UpdateSessionModels(ctx context.Context, p UpdateSessionModels) (apiclient.Result[Session], error) {
	return action.Call[Session](ctx, c.d, action.UpdateSessionModels, p)
}

// GenerateContributions runs the session's models for a stage.
func (c *Client) GenerateContributions(ctx context.Context, p GenerateContributions) (apiclient.Result[GenerationResult], error) {
	return action.Call[GenerationResult](ctx, c.d, action.GenerateContributions, p)
}

// GetContributionContentSignedURL returns a download link for a contribution.
func (c *Client) GetContributionContentSignedURL(ctx context.Context, contributionID string) (apiclient.Result[SignedURL], error) {
	return action.Call[SignedURL](ctx, c.d, action.GetContributionContentSignedURL, contributionRef{contributionID})
}

// GetContributionContentData returns a contribution's content inline.
func (c *Client) GetContributionContentData(ctx context.Context, contributionID string) (apiclient.Result[Content], error) {
	return action.Call[Content](ctx, c.d, action.GetContributionContentData, contributionRef{contributionID})
}

type contributionRef struct {
	ContributionID string `json:"contributionId"`
}

// GetIterationInitialPromptContent returns the prompt an iteration started from.
func (c *Client) GetIterationInitialPromptContent(ctx context.Context, sessionID string, iteration int) (apiclient.Result[IterationPrompt], error) {
	payload := struct {
		SessionID       string `json:"sessionId"`
		IterationNumber int    `json:"iterationNumber"`
	}{sessionID, iteration}
	return action.Call[IterationPrompt](ctx, c.d, action.GetIterationInitialPromptContent, payload)
}

// ListModelCatalog lists the models sessions can use.
func (c *Client) ListModelCatalog(ctx context.Context) (apiclient.Result[[]ModelCatalogEntry], error) {
	return action.Call[[]ModelCatalogEntry](ctx, c.d, action.ListModelCatalog, nil)
}

// SaveContributionEdit stores a user's edit of a contribution.
func (c *Client) SaveContributionEdit(ctx context.Context, p SaveContributionEdit) (apiclient.Result[Contribution], error) {
	return action.Call[Contribution](ctx, c.d, action.SaveContributionEdit, p)
}

// SubmitStageResponses submits responses and feedback for a stage.
func (c *Client) SubmitStageResponses(ctx context.Context, p SubmitStageResponses) (apiclient.Result[SubmitResult], error) {
	return action.Call[SubmitResult](ctx, c.d, action.SubmitStageResponses, p)
}

// Call dispatches any known action with a raw payload. It backs generic
// tooling such as the CLI's call command.
func (c *Client) Call(ctx context.Context, name action.Name, payload any, opts ...apiclient.Option) (apiclient.Result[json.RawMessage], error) {
	return action.Call[json.RawMessage](ctx, c.d, name, payload, opts...)
}
