// Package graph reads the signed-in user's mailbox through the Microsoft
// Graph REST API.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mikey/mail-inspector/internal/config"
	"github.com/mikey/mail-inspector/internal/core"
	"go.uber.org/zap"
)

const messageFields = "id,subject,from,receivedDateTime,bodyPreview,replyTo,sender,hasAttachments,body"

// APIError is a non-2xx response from the mail API
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph API error (%d) on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Body)
}

// Client implements core.MailReader and core.MailDiagnostics
type Client struct {
	baseURL    string
	folder     string
	tokens     core.TokenProvider
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client that authenticates every request with a
// token from tokens
func NewClient(cfg config.GraphConfig, tokens core.TokenProvider, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		folder:  cfg.Folder,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// get performs an authenticated GET and unmarshals the JSON response
func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire access token: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshaling response from GET %s: %w", path, err)
	}
	return nil
}

// reportFailure logs a degraded request with the response detail when
// there is one
func (c *Client) reportFailure(msg string, err error) {
	fields := []zap.Field{zap.Error(err)}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		fields = append(fields, zap.Int("status", apiErr.StatusCode), zap.String("body", apiErr.Body))
	}
	c.logger.Error(msg, fields...)
}

// LatestMessage returns the most recently received message of the
// configured folder, or nil when the folder is empty or the request fails.
func (c *Client) LatestMessage(ctx context.Context) *core.Message {
	query := url.Values{
		"$top":     {"1"},
		"$orderby": {"receivedDateTime desc"},
		"$select":  {messageFields},
	}

	var page struct {
		Value []message `json:"value"`
	}
	path := "/me/mailFolders/" + url.PathEscape(c.folder) + "/messages"
	if err := c.get(ctx, path, query, &page); err != nil {
		c.reportFailure("Failed to fetch latest message", err)
		return nil
	}

	if len(page.Value) == 0 {
		c.logger.Info("Mail folder is empty", zap.String("folder", c.folder))
		return nil
	}

	msg := page.Value[0].toCore()
	return &msg
}

// MessageHeaders returns the internet message headers of a message, or an
// empty slice when the request fails.
func (c *Client) MessageHeaders(ctx context.Context, messageID string) []core.HeaderEntry {
	var resp struct {
		Headers []core.HeaderEntry `json:"internetMessageHeaders"`
	}
	query := url.Values{"$select": {"internetMessageHeaders"}}
	if err := c.get(ctx, "/me/messages/"+url.PathEscape(messageID), query, &resp); err != nil {
		c.reportFailure("Failed to fetch message headers", err)
		return []core.HeaderEntry{}
	}

	if resp.Headers == nil {
		return []core.HeaderEntry{}
	}
	return resp.Headers
}

// Identity returns the signed-in user's profile
func (c *Client) Identity(ctx context.Context) (*core.Identity, error) {
	var me struct {
		DisplayName       string `json:"displayName"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	query := url.Values{"$select": {"displayName,mail,userPrincipalName"}}
	if err := c.get(ctx, "/me", query, &me); err != nil {
		return nil, err
	}

	return &core.Identity{
		DisplayName:       me.DisplayName,
		Mail:              me.Mail,
		UserPrincipalName: me.UserPrincipalName,
	}, nil
}

// Folders lists the top-level mail folders
func (c *Client) Folders(ctx context.Context) ([]core.Folder, error) {
	var page struct {
		Value []struct {
			ID               string `json:"id"`
			DisplayName      string `json:"displayName"`
			ChildFolderCount int    `json:"childFolderCount"`
			TotalItemCount   int    `json:"totalItemCount"`
			UnreadItemCount  int    `json:"unreadItemCount"`
		} `json:"value"`
	}
	if err := c.get(ctx, "/me/mailFolders", nil, &page); err != nil {
		return nil, err
	}

	folders := make([]core.Folder, 0, len(page.Value))
	for _, f := range page.Value {
		folders = append(folders, core.Folder{
			ID:               f.ID,
			DisplayName:      f.DisplayName,
			ChildFolderCount: f.ChildFolderCount,
			TotalItemCount:   f.TotalItemCount,
			UnreadItemCount:  f.UnreadItemCount,
		})
	}
	return folders, nil
}

type emailAddress struct {
	EmailAddress struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"emailAddress"`
}

func (a emailAddress) toCore() core.Address {
	return core.Address{Name: a.EmailAddress.Name, Address: a.EmailAddress.Address}
}

type message struct {
	ID               string         `json:"id"`
	Subject          string         `json:"subject"`
	From             emailAddress   `json:"from"`
	Sender           emailAddress   `json:"sender"`
	ReplyTo          []emailAddress `json:"replyTo"`
	ReceivedDateTime time.Time      `json:"receivedDateTime"`
	BodyPreview      string         `json:"bodyPreview"`
	HasAttachments   bool           `json:"hasAttachments"`
	Body             struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
}

func (m message) toCore() core.Message {
	replyTo := make([]core.Address, 0, len(m.ReplyTo))
	for _, r := range m.ReplyTo {
		replyTo = append(replyTo, r.toCore())
	}

	return core.Message{
		ID:             m.ID,
		Subject:        m.Subject,
		From:           m.From.toCore(),
		Sender:         m.Sender.toCore(),
		ReplyTo:        replyTo,
		ReceivedAt:     m.ReceivedDateTime,
		BodyPreview:    m.BodyPreview,
		HasAttachments: m.HasAttachments,
		Body: core.MessageBody{
			ContentType: m.Body.ContentType,
			Content:     m.Body.Content,
		},
	}
}
