package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/mikey/mail-inspector/internal/authresults"
	"github.com/mikey/mail-inspector/internal/core"
)

// JSONReporter writes one JSON document per call
type JSONReporter struct {
	enc *json.Encoder
}

// NewJSONReporter creates a reporter writing indented JSON to out
func NewJSONReporter(out io.Writer) *JSONReporter {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return &JSONReporter{enc: enc}
}

type jsonInspection struct {
	Suspicious  bool      `json:"suspicious"`
	Score       float64   `json:"score"`
	Confidence  float64   `json:"confidence"`
	Explanation string    `json:"explanation"`
	Model       string    `json:"model"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

type jsonReport struct {
	MessageID      string             `json:"message_id"`
	Subject        string             `json:"subject"`
	From           string             `json:"from"`
	ReceivedAt     time.Time          `json:"received_at"`
	Preview        string             `json:"preview"`
	Body           string             `json:"body"`
	HasAttachments bool               `json:"has_attachments"`
	SPF            authresults.Result `json:"spf"`
	DKIM           authresults.Result `json:"dkim"`
	Inspection     *jsonInspection    `json:"inspection,omitempty"`
}

// Report encodes the message summary
func (r *JSONReporter) Report(report *core.Report) error {
	out := jsonReport{
		MessageID:      report.MessageID,
		Subject:        report.Subject,
		From:           report.From,
		ReceivedAt:     report.ReceivedAt,
		Preview:        report.Preview,
		Body:           report.Body,
		HasAttachments: report.HasAttachments,
		SPF:            report.SPF,
		DKIM:           report.DKIM,
	}
	if res := report.Inspection; res != nil {
		out.Inspection = &jsonInspection{
			Suspicious:  res.IsSuspicious,
			Score:       res.Score,
			Confidence:  res.Confidence,
			Explanation: res.Explanation,
			Model:       res.ModelUsed,
			AnalyzedAt:  res.AnalyzedAt,
		}
	}
	return r.enc.Encode(out)
}

// NoMessages encodes an empty result
func (r *JSONReporter) NoMessages() error {
	return r.enc.Encode(map[string]any{"message": nil})
}

// Identity encodes the signed-in user
func (r *JSONReporter) Identity(identity *core.Identity) error {
	return r.enc.Encode(map[string]string{
		"display_name":        identity.DisplayName,
		"mail":                identity.Mail,
		"user_principal_name": identity.UserPrincipalName,
	})
}

// Folders encodes the folder summaries
func (r *JSONReporter) Folders(folders []core.Folder) error {
	type folder struct {
		ID       string `json:"id"`
		Name     string `json:"display_name"`
		Children int    `json:"child_folder_count"`
		Total    int    `json:"total_item_count"`
		Unread   int    `json:"unread_item_count"`
	}
	out := make([]folder, 0, len(folders))
	for _, f := range folders {
		out = append(out, folder{f.ID, f.DisplayName, f.ChildFolderCount, f.TotalItemCount, f.UnreadItemCount})
	}
	return r.enc.Encode(out)
}

// Claims encodes the token claims
func (r *JSONReporter) Claims(claims map[string]any) error {
	return r.enc.Encode(claims)
}
