package utils

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mikey/mail-inspector/internal/core"
)

// SystemPrompt is sent as the system role where a provider supports one
const SystemPrompt = "You are an email security analyst. Respond only with JSON."

const inspectionPrompt = `Assess whether the following email is a phishing or spoofing attempt.
The receiving server reported these authentication results; treat anything
other than "pass" as unverified.

Respond with a JSON object containing:
- is_suspicious: boolean
- score: number between 0 and 1 (higher means more likely malicious)
- confidence: number between 0 and 1
- explanation: string (one or two sentences)

From: %s
Subject: %s
SPF: %s
DKIM: %s
Has attachments: %t
Body:
%s

Respond only with the JSON object and nothing else.`

// InspectionResponse is the JSON object the model is asked to return
type InspectionResponse struct {
	IsSuspicious bool    `json:"is_suspicious"`
	Score        float64 `json:"score"`
	Confidence   float64 `json:"confidence"`
	Explanation  string  `json:"explanation"`
}

// BuildInspectionPrompt renders the user prompt for req with an already
// prepared body
func BuildInspectionPrompt(req *core.InspectionRequest, body string) string {
	return fmt.Sprintf(inspectionPrompt, req.From, req.Subject, req.SPF, req.DKIM, req.Attachments, body)
}

// ParseInspectionResponse decodes the model answer into a result
func ParseInspectionResponse(text, model, processingID string) (*core.InspectionResult, error) {
	var resp InspectionResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		obj, ok := ExtractJSONObject(text)
		if !ok {
			return nil, fmt.Errorf("failed to extract JSON from model response: %w", err)
		}
		if err := json.Unmarshal([]byte(obj), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
		}
	}

	return &core.InspectionResult{
		IsSuspicious: resp.IsSuspicious,
		Score:        resp.Score,
		Confidence:   resp.Confidence,
		Explanation:  resp.Explanation,
		AnalyzedAt:   time.Now(),
		ModelUsed:    model,
		ProcessingID: processingID,
	}, nil
}
