package report

import (
	"fmt"
	"io"

	"github.com/mikey/mail-inspector/internal/core"
	"go.uber.org/zap"
)

// DevicePrompter prints device-code instructions. It writes to its own
// stream so JSON reports on stdout stay parseable.
type DevicePrompter struct {
	out    io.Writer
	logger *zap.Logger
}

// NewDevicePrompter creates a prompter writing to out
func NewDevicePrompter(out io.Writer, logger *zap.Logger) *DevicePrompter {
	return &DevicePrompter{out: out, logger: logger}
}

// PromptDeviceCode prints where to go and which code to enter
func (p *DevicePrompter) PromptDeviceCode(flow *core.DeviceFlow) {
	p.logger.Info("Waiting for device code sign-in",
		zap.String("verification_uri", flow.VerificationURI),
		zap.Time("expires_at", flow.ExpiresAt))

	if _, err := fmt.Fprintf(p.out, "\nGo to %s and enter code: %s\n", flow.VerificationURI, flow.UserCode); err != nil {
		p.logger.Warn("Failed to print device code", zap.Error(err))
	}
}
