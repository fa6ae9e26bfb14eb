package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/mail-inspector/internal/authresults"
	"github.com/mikey/mail-inspector/internal/htmltext"
	"go.uber.org/zap"
)

// IngestionService fetches the newest message and summarizes it
type IngestionService struct {
	tokens    TokenProvider
	mail      MailReader
	inspector BodyInspector
	senders   SenderPolicy
	threshold float64
	logger    *zap.Logger
}

// NewIngestionService creates a new ingestion service. inspector and
// senders may be nil to skip inspection and trusted-sender checks.
func NewIngestionService(
	tokens TokenProvider,
	mail MailReader,
	inspector BodyInspector,
	senders SenderPolicy,
	threshold float64,
	logger *zap.Logger,
) *IngestionService {
	return &IngestionService{
		tokens:    tokens,
		mail:      mail,
		inspector: inspector,
		senders:   senders,
		threshold: threshold,
		logger:    logger,
	}
}

// Ingest runs one pass: token, latest message, headers, verdict, body and
// the optional inspection. It returns ErrMailboxEmpty when there is no
// message.
func (s *IngestionService) Ingest(ctx context.Context) (*Report, error) {
	if _, err := s.tokens.Token(ctx); err != nil {
		return nil, fmt.Errorf("failed to acquire access token: %w", err)
	}

	msg := s.mail.LatestMessage(ctx)
	if msg == nil {
		return nil, ErrMailboxEmpty
	}
	s.logger.Debug("Fetched latest message", zap.String("message_id", msg.ID))

	verdict := authresults.Parse(s.mail.MessageHeaders(ctx, msg.ID))

	body, err := NormalizeBody(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize message body: %w", err)
	}

	report := &Report{
		MessageID:      msg.ID,
		Subject:        msg.Subject,
		From:           msg.From.Address,
		ReceivedAt:     msg.ReceivedAt,
		Preview:        msg.BodyPreview,
		Body:           body,
		HasAttachments: msg.HasAttachments,
		SPF:            verdict.SPF,
		DKIM:           verdict.DKIM,
	}

	report.Inspection = s.inspect(ctx, report, verdict)
	return report, nil
}

// inspect runs the body inspector unless it is disabled or the sender is
// trusted. Failures are logged and leave the report without an inspection.
func (s *IngestionService) inspect(ctx context.Context, report *Report, verdict authresults.Verdict) *InspectionResult {
	if s.inspector == nil {
		return nil
	}

	if s.senders != nil && s.senders.IsTrusted(report.From, verdict) {
		s.logger.Info("Skipping inspection for trusted sender",
			zap.String("sender", report.From),
			zap.String("action", "trusted_bypass"))
		return nil
	}

	start := time.Now()
	result, err := s.inspector.Inspect(ctx, &InspectionRequest{
		From:        report.From,
		Subject:     report.Subject,
		Body:        report.Body,
		SPF:         verdict.SPF,
		DKIM:        verdict.DKIM,
		Attachments: report.HasAttachments,
	})
	if err != nil {
		s.logger.Error("Body inspection failed", zap.Error(err), zap.String("message_id", report.MessageID))
		return nil
	}

	result.IsSuspicious = result.IsSuspicious || s.Suspicious(result)
	s.logger.Info("Body inspection complete",
		zap.Bool("suspicious", result.IsSuspicious),
		zap.Float64("score", result.Score),
		zap.String("model", result.ModelUsed),
		zap.Duration("duration", time.Since(start)))
	return result
}

// Suspicious reports whether the inspection score reaches the threshold
func (s *IngestionService) Suspicious(result *InspectionResult) bool {
	return s.threshold > 0 && result.Score >= s.threshold
}

// NormalizeBody returns the plain text of body. HTML is flattened and
// anything else is trimmed.
func NormalizeBody(body MessageBody) (string, error) {
	if !body.IsHTML() {
		return strings.TrimSpace(body.Content), nil
	}
	return htmltext.Normalize(body.Content)
}
