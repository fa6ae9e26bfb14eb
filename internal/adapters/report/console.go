// Package report renders ingestion results for a terminal or for other
// programs.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mikey/mail-inspector/internal/core"
	"go.uber.org/zap"
)

// ConsoleReporter writes a human-readable summary
type ConsoleReporter struct {
	out     io.Writer
	logger  *zap.Logger
	verbose bool
}

// NewConsoleReporter creates a console reporter. verbose adds the full
// normalized body and the inspection details.
func NewConsoleReporter(out io.Writer, logger *zap.Logger, verbose bool) *ConsoleReporter {
	return &ConsoleReporter{out: out, logger: logger, verbose: verbose}
}

// Report prints the message summary
func (r *ConsoleReporter) Report(report *core.Report) error {
	r.logger.Debug("Printing report", zap.String("message_id", report.MessageID))

	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Newest email ===\n")
	fmt.Fprintf(&b, "Subject    : %s\n", report.Subject)
	fmt.Fprintf(&b, "From       : %s\n", report.From)
	fmt.Fprintf(&b, "Received   : %s\n", formatTime(report.ReceivedAt))
	fmt.Fprintf(&b, "Preview    : %s\n", report.Preview)
	fmt.Fprintf(&b, "Message ID : %s\n", report.MessageID)
	fmt.Fprintf(&b, "Attachments: %t\n", report.HasAttachments)
	fmt.Fprintf(&b, "SPF        : %s\n", report.SPF)
	fmt.Fprintf(&b, "DKIM       : %s\n", report.DKIM)

	body := report.Body
	if !r.verbose && len(body) > 500 {
		body = body[:500] + "..."
	}
	fmt.Fprintf(&b, "\nBody:\n%s\n", body)

	if res := report.Inspection; res != nil {
		fmt.Fprintf(&b, "\n=== Inspection ===\n")
		fmt.Fprintf(&b, "Suspicious : %t\n", res.IsSuspicious)
		fmt.Fprintf(&b, "Score      : %.4f\n", res.Score)
		fmt.Fprintf(&b, "Explanation: %s\n", res.Explanation)
		if r.verbose {
			fmt.Fprintf(&b, "Confidence : %.4f\n", res.Confidence)
			fmt.Fprintf(&b, "Model      : %s\n", res.ModelUsed)
		}
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

// NoMessages prints the empty-mailbox notice
func (r *ConsoleReporter) NoMessages() error {
	_, err := fmt.Fprintln(r.out, "No messages found.")
	return err
}

// Identity prints who is signed in
func (r *ConsoleReporter) Identity(identity *core.Identity) error {
	_, err := fmt.Fprintf(r.out, "Signed in as: %s <%s>\n", identity.DisplayName, identity.PreferredAddress())
	return err
}

// Folders prints one line per folder
func (r *ConsoleReporter) Folders(folders []core.Folder) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-30s %8s %8s %9s\n", "FOLDER", "TOTAL", "UNREAD", "CHILDREN")
	for _, f := range folders {
		fmt.Fprintf(&b, "%-30s %8d %8d %9d\n", f.DisplayName, f.TotalItemCount, f.UnreadItemCount, f.ChildFolderCount)
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

// Claims prints the claims sorted by name
func (r *ConsoleReporter) Claims(claims map[string]any) error {
	names := make([]string, 0, len(claims))
	for name := range claims {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%-20s %v\n", name+":", claims[name])
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
