// Package authresults extracts the SPF and DKIM verdicts a receiving mail
// server recorded in Authentication-Results headers. Verdicts are reported
// as claimed; nothing here verifies them.
package authresults

import (
	"regexp"
	"strings"
)

// HeaderName is the header carrying authentication verdicts
const HeaderName = "authentication-results"

// Result is a normalized verdict for one mechanism
type Result string

const (
	Pass     Result = "pass"
	Fail     Result = "fail"
	SoftFail Result = "softfail"
	Neutral  Result = "neutral"
	None     Result = "none"
	Unknown  Result = "unknown"
)

// Header is one raw transport header
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Verdict holds the SPF and DKIM results of one message
type Verdict struct {
	SPF  Result `json:"spf"`
	DKIM Result `json:"dkim"`
}

var (
	spfPattern  = regexp.MustCompile(`(?i)\bspf\s*=\s*(pass|fail|softfail|neutral|none)\b`)
	dkimPattern = regexp.MustCompile(`(?i)\bdkim\s*=\s*(pass|fail|softfail|neutral|none)\b`)
)

// Parse scans every Authentication-Results header. SPF and DKIM are
// resolved independently and the last header matching a mechanism wins.
// A mechanism no header mentions stays Unknown.
func Parse(headers []Header) Verdict {
	v := Verdict{SPF: Unknown, DKIM: Unknown}
	for _, h := range headers {
		if !strings.EqualFold(h.Name, HeaderName) {
			continue
		}
		if r, ok := match(spfPattern, h.Value); ok {
			v.SPF = r
		}
		if r, ok := match(dkimPattern, h.Value); ok {
			v.DKIM = r
		}
	}
	return v
}

func match(re *regexp.Regexp, value string) (Result, bool) {
	m := re.FindStringSubmatch(value)
	if m == nil {
		return Unknown, false
	}
	return Result(strings.ToLower(m[1])), true
}
