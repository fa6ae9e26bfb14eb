// Package whitelist decides which senders skip body inspection.
package whitelist

import (
	"strings"

	"github.com/mikey/mail-inspector/internal/authresults"
	"go.uber.org/zap"
)

// Checker matches sender domains against the trusted list. A match only
// counts when the receiving server authenticated the message, so a forged
// From line on a trusted domain is still inspected.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a checker for domains. Entries are matched case
// insensitively and cover their subdomains.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
		if d != "" {
			normalized = append(normalized, d)
		}
	}

	if len(normalized) > 0 {
		logger.Info("Initialized trusted sender domains", zap.Strings("domains", normalized))
	}

	return &Checker{domains: normalized, logger: logger}
}

// IsTrusted reports whether from belongs to a trusted domain and either SPF
// or DKIM passed
func (c *Checker) IsTrusted(from string, verdict authresults.Verdict) bool {
	if len(c.domains) == 0 {
		return false
	}

	at := strings.LastIndexByte(from, '@')
	if at < 0 || at == len(from)-1 {
		return false
	}
	domain := strings.ToLower(from[at+1:])

	if !c.matches(domain) {
		return false
	}

	if verdict.SPF != authresults.Pass && verdict.DKIM != authresults.Pass {
		c.logger.Warn("Trusted domain failed authentication",
			zap.String("from", from),
			zap.String("spf", string(verdict.SPF)),
			zap.String("dkim", string(verdict.DKIM)))
		return false
	}

	c.logger.Debug("Sender is trusted", zap.String("domain", domain))
	return true
}

func (c *Checker) matches(domain string) bool {
	for _, trusted := range c.domains {
		if domain == trusted || strings.HasSuffix(domain, "."+trusted) {
			return true
		}
	}
	return false
}
