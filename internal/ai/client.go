// ABOUTME: AI chat sub-client for providers, system prompts, chat messages and history
// ABOUTME: Catalog lookups are public; history calls carry an explicit caller token

package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/2389/edgecall/internal/apiclient"
	"github.com/2389/edgecall/internal/apierr"
)

// CodeValidation marks arguments rejected before any call is made.
const CodeValidation = "VALIDATION_ERROR"

// Provider is an AI provider offered to chat.
type Provider struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	APIIdentifier string          `json:"api_identifier"`
	Description   *string         `json:"description"`
	IsActive      bool            `json:"is_active"`
	Config        json.RawMessage `json:"config,omitempty"`
}

// SystemPrompt is a reusable system prompt.
type SystemPrompt struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PromptText string `json:"prompt_text"`
	IsActive   bool   `json:"is_active"`
}

// ChatRequest is one user message sent to a provider.
type ChatRequest struct {
	Message         string        `json:"message"`
	ProviderID      string        `json:"providerId"`
	PromptID        string        `json:"promptId"`
	ChatID          string        `json:"chatId,omitempty"`
	OrganizationID  string        `json:"organizationId,omitempty"`
	RewindFromID    string        `json:"rewindFromMessageId,omitempty"`
	ContextMessages []ContextItem `json:"contextMessages,omitempty"`
}

// ContextItem is a prior message supplied as context.
type ContextItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message is one stored chat message.
type Message struct {
	ID               string          `json:"id"`
	ChatID           string          `json:"chat_id"`
	UserID           *string         `json:"user_id"`
	Role             string          `json:"role"`
	Content          string          `json:"content"`
	AIProviderID     *string         `json:"ai_provider_id"`
	SystemPromptID   *string         `json:"system_prompt_id"`
	TokenUsage       json.RawMessage `json:"token_usage,omitempty"`
	IsActiveInThread bool            `json:"is_active_in_thread"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Chat is one conversation.
type Chat struct {
	ID             string    `json:"id"`
	UserID         *string   `json:"user_id"`
	OrganizationID *string   `json:"organization_id"`
	SystemPromptID *string   `json:"system_prompt_id"`
	Title          *string   `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ChatWithMessages is a chat and its messages.
type ChatWithMessages struct {
	Chat     Chat      `json:"chat"`
	Messages []Message `json:"messages"`
}

// Client is the AI sub-client.
type Client struct {
	sender apiclient.Sender
	logger *slog.Logger
}

// New builds a Client over sender.
func New(sender apiclient.Sender, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{sender: sender, logger: logger.With("component", "ai")}
}

// Providers lists AI providers. No credential is sent.
func (c *Client) Providers(ctx context.Context) (apiclient.Result[[]Provider], error) {
	return apiclient.Get[[]Provider](ctx, c.sender, "ai-providers", apiclient.Public())
}

// SystemPrompts lists system prompts. No credential is sent.
func (c *Client) SystemPrompts(ctx context.Context) (apiclient.Result[[]SystemPrompt], error) {
	return apiclient.Get[[]SystemPrompt](ctx, c.sender, "system-prompts", apiclient.Public())
}

// SendMessage posts a chat message and returns the assistant's reply.
func (c *Client) SendMessage(ctx context.Context, req ChatRequest, opts ...apiclient.Option) (apiclient.Result[Message], error) {
	return apiclient.Post[Message](ctx, c.sender, "chat", req, opts...)
}

// History lists the caller's chats, or an organization's when orgID is set.
// token authenticates the call instead of the stored session.
func (c *Client) History(ctx context.Context, token, orgID string) (apiclient.Result[[]Chat], error) {
	return apiclient.Get[[]Chat](ctx, c.sender, "chat-history", withToken(token), withOrg(orgID))
}

// ChatWithMessages fetches one chat and its messages.
func (c *Client) ChatWithMessages(ctx context.Context, chatID, token, orgID string) (apiclient.Result[ChatWithMessages], error) {
	if chatID == "" {
		return invalid[ChatWithMessages]("Chat ID is required"), nil
	}
	return apiclient.Get[ChatWithMessages](ctx, c.sender, apiclient.Path("chat-details", chatID), withToken(token), withOrg(orgID))
}

// DeleteChat deletes a chat.
func (c *Client) DeleteChat(ctx context.Context, chatID, token, orgID string) (apiclient.Result[struct{}], error) {
	if chatID == "" {
		return invalid[struct{}]("Chat ID is required"), nil
	}
	c.logger.Debug("deleting chat", "chat_id", chatID)
	return apiclient.Delete[struct{}](ctx, c.sender, apiclient.Path("chat", chatID), withToken(token), withOrg(orgID))
}

func withToken(token string) apiclient.Option {
	if token == "" {
		return nil
	}
	return apiclient.WithToken(token)
}

func withOrg(orgID string) apiclient.Option {
	if orgID == "" {
		return nil
	}
	return apiclient.WithQuery(url.Values{"organizationId": {orgID}})
}

func invalid[T any](msg string) apiclient.Result[T] {
	return apiclient.Fail[T](http.StatusBadRequest, &apierr.Record{Code: CodeValidation, Message: msg})
}
