package core

import (
	"context"
	"errors"

	"github.com/mikey/mail-inspector/internal/authresults"
)

var (
	// ErrCredentialsNotFound is returned by a CredentialStore that holds nothing yet
	ErrCredentialsNotFound = errors.New("credential cache not found")
	// ErrNoAccount is returned when silent acquisition is attempted without an account
	ErrNoAccount = errors.New("no account selected for silent token acquisition")
	// ErrMailboxEmpty is returned when there is no message to ingest
	ErrMailboxEmpty = errors.New("no messages found")
)

// TokenProvider hands out a bearer token for the mail API
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// MailReader is the automated retrieval path. Both methods degrade to an
// empty result on failure instead of returning an error.
type MailReader interface {
	// LatestMessage returns the newest inbox message, or nil
	LatestMessage(ctx context.Context) *Message

	// MessageHeaders returns the raw transport headers of a message
	MessageHeaders(ctx context.Context, messageID string) []HeaderEntry
}

// MailDiagnostics is the manual debugging path; failures are returned.
type MailDiagnostics interface {
	Identity(ctx context.Context) (*Identity, error)
	Folders(ctx context.Context) ([]Folder, error)
}

// IdentityProvider is the device-code capable sign-in service
type IdentityProvider interface {
	// Accounts lists the accounts present in the credential cache
	Accounts(ctx context.Context) ([]Account, error)

	// AcquireTokenSilent uses cached material for account. A nil account
	// fails with ErrNoAccount.
	AcquireTokenSilent(ctx context.Context, scopes []string, account *Account) (*AuthResult, error)

	// InitiateDeviceFlow requests a verification URL and user code
	InitiateDeviceFlow(ctx context.Context, scopes []string) (*DeviceFlow, error)

	// AcquireTokenByDeviceFlow blocks until the flow completes, is denied or expires
	AcquireTokenByDeviceFlow(ctx context.Context, flow *DeviceFlow) (*AuthResult, error)
}

// CredentialCache is the serializable session state behind an IdentityProvider
type CredentialCache interface {
	Deserialize(data []byte) error
	Serialize() ([]byte, error)
	HasStateChanged() bool
}

// CredentialStore persists the serialized credential cache
type CredentialStore interface {
	// Load returns the stored blob or ErrCredentialsNotFound
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored blob
	Save(ctx context.Context, data []byte) error
}

// ClaimsDecoder reads the claims of a token without verifying it
type ClaimsDecoder interface {
	Decode(token string) (map[string]any, error)
}

// BodyInspector produces an assessment of a normalized message
type BodyInspector interface {
	Inspect(ctx context.Context, req *InspectionRequest) (*InspectionResult, error)
}

// SenderPolicy decides whether a sender may skip body inspection
type SenderPolicy interface {
	IsTrusted(from string, verdict authresults.Verdict) bool
}
