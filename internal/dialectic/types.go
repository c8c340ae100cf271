// ABOUTME: Payloads and results for dialectic service actions
// ABOUTME: Payload fields are camelCase; result rows keep the remote's snake_case

package dialectic

import (
	"encoding/json"
	"time"
)

// DomainTag is a selectable domain tag.
type DomainTag struct {
	ID               string  `json:"id"`
	DomainTag        string  `json:"domainTag"`
	Description      *string `json:"description"`
	StageAssociation *string `json:"stageAssociation"`
}

// DomainDescriptor describes a domain offered for a stage.
type DomainDescriptor struct {
	ID               string  `json:"id"`
	DomainName       string  `json:"domain_name"`
	Description      *string `json:"description"`
	StageAssociation *string `json:"stage_association"`
}

// DomainOverlay is a domain-specific overlay on a stage's prompts.
type DomainOverlay struct {
	ID               string          `json:"id"`
	DomainID         string          `json:"domainId"`
	DomainName       string          `json:"domainName"`
	Description      *string         `json:"description"`
	StageAssociation string          `json:"stageAssociation"`
	OverlayValues    json.RawMessage `json:"overlay_values,omitempty"`
}

// Domain is one knowledge domain.
type Domain struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	ParentDomainID *string `json:"parent_domain_id"`
}

// DomainRef is the joined domain name on a project.
type DomainRef struct {
	Name string `json:"name"`
}

// Project is a dialectic project.
type Project struct {
	ID                      string          `json:"id"`
	UserID                  string          `json:"user_id"`
	ProjectName             string          `json:"project_name"`
	InitialUserPrompt       string          `json:"initial_user_prompt"`
	SelectedDomainID        string          `json:"selected_domain_id"`
	SelectedDomainOverlayID *string         `json:"selected_domain_overlay_id"`
	Domain                  *DomainRef      `json:"dialectic_domains,omitempty"`
	ProcessTemplateID       *string         `json:"process_template_id,omitempty"`
	RepoURL                 *string         `json:"repo_url"`
	Status                  string          `json:"status"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
	Sessions                []Session       `json:"dialectic_sessions,omitempty"`
	Resources               json.RawMessage `json:"resources,omitempty"`
	ProcessTemplate         json.RawMessage `json:"dialectic_process_templates,omitempty"`
}

// Session is one working session on a project.
type Session struct {
	ID                 string    `json:"id"`
	ProjectID          string    `json:"project_id"`
	SessionDescription *string   `json:"session_description"`
	IterationCount     int       `json:"iteration_count"`
	SelectedModelIDs   []string  `json:"selected_model_ids,omitempty"`
	Status             string    `json:"status"`
	CurrentStageID     *string   `json:"current_stage_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Contribution is one model or user contribution to a stage.
type Contribution struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	ModelID         *string   `json:"model_id"`
	ModelName       *string   `json:"model_name"`
	Stage           string    `json:"stage"`
	IterationNumber int       `json:"iteration_number"`
	MimeType        string    `json:"mime_type"`
	SizeBytes       *int64    `json:"size_bytes"`
	IsLatestEdit    bool      `json:"is_latest_edit"`
	EditVersion     int       `json:"edit_version"`
	OriginalModelID *string   `json:"original_model_contribution_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// GenerationResult reports contributions produced for a stage.
type GenerationResult struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message,omitempty"`
	Contributions []Contribution `json:"contributions,omitempty"`
	JobIDs        []string       `json:"job_ids,omitempty"`
}

// ModelCatalogEntry is one AI model available for sessions.
type ModelCatalogEntry struct {
	ID                  string   `json:"id"`
	ProviderName        string   `json:"provider_name"`
	ModelName           string   `json:"model_name"`
	APIIdentifier       string   `json:"api_identifier"`
	Description         *string  `json:"description"`
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	ContextWindowTokens *int     `json:"context_window_tokens"`
	IsActive            bool     `json:"is_active"`
}

// SignedURL is a short-lived download link for stored content.
type SignedURL struct {
	SignedURL string `json:"signedUrl"`
	MimeType  string `json:"mimeType"`
	SizeBytes *int64 `json:"sizeBytes"`
}

// Content is inline stored content.
type Content struct {
	Content   string `json:"content"`
	MimeType  string `json:"mimeType"`
	SizeBytes *int64 `json:"sizeBytes,omitempty"`
	FileName  string `json:"fileName,omitempty"`
}

// ResourceContent is a project resource with its content.
type ResourceContent struct {
	Content
	SourceContributionID *string `json:"sourceContributionId,omitempty"`
}

// IterationPrompt is the seed prompt used for an iteration.
type IterationPrompt struct {
	Content     string `json:"content"`
	MimeType    string `json:"mimeType"`
	StoragePath string `json:"storagePath"`
}

// Export is a packaged project archive.
type Export struct {
	ExportURL string `json:"export_url"`
}

// StageResponse is the user's reply to one contribution.
type StageResponse struct {
	OriginalContributionID string `json:"originalContributionId"`
	ResponseText           string `json:"responseText"`
}

// StageFeedback is the user's overall feedback for a stage.
type StageFeedback struct {
	Content      string          `json:"content"`
	FeedbackType string          `json:"feedbackType"`
	ResourceType string          `json:"resourceType,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// SubmitStageResponses is the payload for submitting a stage.
type SubmitStageResponses struct {
	SessionID              string          `json:"sessionId"`
	ProjectID              string          `json:"projectId"`
	StageSlug              string          `json:"stageSlug"`
	CurrentIterationNumber int             `json:"currentIterationNumber"`
	Responses              []StageResponse `json:"responses"`
	UserStageFeedback      *StageFeedback  `json:"userStageFeedback,omitempty"`
}

// SubmitResult reports the outcome of a stage submission.
type SubmitResult struct {
	Message        string   `json:"message,omitempty"`
	UpdatedSession *Session `json:"updatedSession,omitempty"`
}

// NewProject is the input for creating a project. PromptFile, when set,
// replaces InitialUserPrompt as the project's seed text.
type NewProject struct {
	ProjectName             string
	InitialUserPrompt       string
	SelectedDomainID        string
	SelectedDomainOverlayID string
	PromptFile              *File
}

// File is an uploaded attachment.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// StartSession is the payload for starting a session.
type StartSession struct {
	ProjectID               string   `json:"projectId"`
	SessionDescription      string   `json:"sessionDescription,omitempty"`
	SelectedModelCatalogIDs []string `json:"selectedModelCatalogIds"`
	StageSlug               string   `json:"stageSlug,omitempty"`
}

// UpdateSessionModels is the payload for changing a session's models.
type UpdateSessionModels struct {
	SessionID               string   `json:"sessionId"`
	SelectedModelCatalogIDs []string `json:"selectedModelCatalogIds"`
}

// GenerateContributions is the payload for running a stage's models.
type GenerateContributions struct {
	SessionID       string `json:"sessionId"`
	ProjectID       string `json:"projectId"`
	StageSlug       string `json:"stageSlug"`
	IterationNumber int    `json:"iterationNumber"`
}

// SaveContributionEdit is the payload for saving a user's edit.
type SaveContributionEdit struct {
	OriginalContributionIDToEdit string `json:"originalContributionIdToEdit"`
	EditedContentText            string `json:"editedContentText"`
	ProjectID                    string `json:"projectId"`
	SessionID                    string `json:"sessionId"`
	OriginalModelContributionID  string `json:"originalModelContributionId"`
	ResponseText                 string `json:"responseText"`
	DocumentKey                  string `json:"documentKey,omitempty"`
	ResourceType                 string `json:"resourceType,omitempty"`
}
