package core

import (
	"strings"
	"time"

	"github.com/mikey/mail-inspector/internal/authresults"
)

// Address is a mailbox as reported by the mail API
type Address struct {
	Name    string
	Address string
}

// MessageBody is the full body of a message and its content type marker
// ("html" or "text").
type MessageBody struct {
	ContentType string
	Content     string
}

// IsHTML reports whether the body is markup
func (b MessageBody) IsHTML() bool {
	return strings.EqualFold(b.ContentType, "html")
}

// Message is a remote mail message. It is never mutated locally.
type Message struct {
	ID             string
	Subject        string
	From           Address
	Sender         Address
	ReplyTo        []Address
	ReceivedAt     time.Time
	BodyPreview    string
	Body           MessageBody
	HasAttachments bool
}

// HeaderEntry is one raw transport header. Name is case-insensitive.
type HeaderEntry = authresults.Header

// Identity is the signed-in user's profile
type Identity struct {
	DisplayName       string
	Mail              string
	UserPrincipalName string
}

// PreferredAddress returns the mail address, or the UPN when no mailbox
// address is set.
func (i Identity) PreferredAddress() string {
	if i.Mail != "" {
		return i.Mail
	}
	return i.UserPrincipalName
}

// Folder summarizes one mailbox folder
type Folder struct {
	ID               string
	DisplayName      string
	ChildFolderCount int
	TotalItemCount   int
	UnreadItemCount  int
}

// Account is a previously signed-in identity held in the credential cache
type Account struct {
	HomeAccountID string
	Username      string
	TenantID      string
}

// DeviceFlow describes a pending device-code sign-in
type DeviceFlow struct {
	UserCode        string
	VerificationURI string
	Message         string
	ExpiresAt       time.Time

	// Handle is the provider's own flow state, passed back unchanged when
	// completing the flow.
	Handle any
}

// AuthResult is the outcome of a token acquisition
type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Account     Account
}

// InspectionRequest carries what the body inspector gets to see
type InspectionRequest struct {
	From        string
	Subject     string
	Body        string
	SPF         authresults.Result
	DKIM        authresults.Result
	Attachments bool
}

// InspectionResult represents the result of an optional body inspection
type InspectionResult struct {
	IsSuspicious bool
	Score        float64
	Confidence   float64
	Explanation  string
	AnalyzedAt   time.Time
	ModelUsed    string
	ProcessingID string
}

// Report is the structured summary of one ingested message
type Report struct {
	MessageID      string
	Subject        string
	From           string
	ReceivedAt     time.Time
	Preview        string
	Body           string
	HasAttachments bool
	SPF            authresults.Result
	DKIM           authresults.Result
	Inspection     *InspectionResult
}
