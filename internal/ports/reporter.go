package ports

import (
	"github.com/mikey/mail-inspector/internal/core"
)

// Reporter presents ingestion results and diagnostics to the operator
type Reporter interface {
	// Report prints the summary of an ingested message
	Report(report *core.Report) error

	// NoMessages tells the operator the mailbox had nothing to ingest
	NoMessages() error

	// Identity prints the signed-in user
	Identity(identity *core.Identity) error

	// Folders prints the mailbox folder summaries
	Folders(folders []core.Folder) error

	// Claims prints the decoded claims of the access token
	Claims(claims map[string]any) error
}
