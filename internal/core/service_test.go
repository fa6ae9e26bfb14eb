package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikey/mail-inspector/internal/authresults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTokens struct {
	err   error
	calls int
}

func (f *fakeTokens) Token(ctx context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "token", nil
}

type fakeMail struct {
	msg           *Message
	headers       []HeaderEntry
	headerLookups []string
}

func (f *fakeMail) LatestMessage(ctx context.Context) *Message {
	return f.msg
}

func (f *fakeMail) MessageHeaders(ctx context.Context, messageID string) []HeaderEntry {
	f.headerLookups = append(f.headerLookups, messageID)
	return f.headers
}

type fakeInspector struct {
	req    *InspectionRequest
	result *InspectionResult
	err    error
}

func (f *fakeInspector) Inspect(ctx context.Context, req *InspectionRequest) (*InspectionResult, error) {
	f.req = req
	return f.result, f.err
}

type staticPolicy bool

func (p staticPolicy) IsTrusted(from string, verdict authresults.Verdict) bool {
	return bool(p)
}

func sampleMessage() *Message {
	return &Message{
		ID:             "AAMk1",
		Subject:        "Quarterly report",
		From:           Address{Name: "Finance", Address: "finance@example.com"},
		ReceivedAt:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		BodyPreview:    "Hello world",
		HasAttachments: true,
		Body:           MessageBody{ContentType: "html", Content: "<html><body><p>Hello</p><p>world</p></body></html>"},
	}
}

func TestIngest_BuildsReport(t *testing.T) {
	mail := &fakeMail{
		msg: sampleMessage(),
		headers: []HeaderEntry{
			{Name: "Received", Value: "from mx"},
			{Name: "Authentication-Results", Value: "spf=pass smtp.mailfrom=x; dkim=fail header.d=y"},
		},
	}
	svc := NewIngestionService(&fakeTokens{}, mail, nil, nil, 0.7, zap.NewNop())

	report, err := svc.Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AAMk1"}, mail.headerLookups)
	assert.Equal(t, &Report{
		MessageID:      "AAMk1",
		Subject:        "Quarterly report",
		From:           "finance@example.com",
		ReceivedAt:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Preview:        "Hello world",
		Body:           "Hello world",
		HasAttachments: true,
		SPF:            authresults.Pass,
		DKIM:           authresults.Fail,
	}, report)
}

func TestIngest_EmptyMailbox(t *testing.T) {
	mail := &fakeMail{}
	svc := NewIngestionService(&fakeTokens{}, mail, nil, nil, 0, zap.NewNop())

	_, err := svc.Ingest(context.Background())
	assert.ErrorIs(t, err, ErrMailboxEmpty)
	assert.Empty(t, mail.headerLookups)
}

func TestIngest_TokenFailureStops(t *testing.T) {
	tokens := &fakeTokens{err: errors.New("flow not started")}
	mail := &fakeMail{msg: sampleMessage()}
	svc := NewIngestionService(tokens, mail, nil, nil, 0, zap.NewNop())

	_, err := svc.Ingest(context.Background())
	assert.ErrorContains(t, err, "flow not started")
	assert.Empty(t, mail.headerLookups)
}

func TestIngest_NoHeadersIsUnknown(t *testing.T) {
	msg := sampleMessage()
	msg.Body = MessageBody{ContentType: "text", Content: "  plain body \n"}
	svc := NewIngestionService(&fakeTokens{}, &fakeMail{msg: msg}, nil, nil, 0, zap.NewNop())

	report, err := svc.Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, authresults.Unknown, report.SPF)
	assert.Equal(t, authresults.Unknown, report.DKIM)
	assert.Equal(t, "plain body", report.Body)
}

func TestIngest_Inspection(t *testing.T) {
	inspector := &fakeInspector{result: &InspectionResult{Score: 0.8, ModelUsed: "m"}}
	mail := &fakeMail{
		msg:     sampleMessage(),
		headers: []HeaderEntry{{Name: "authentication-results", Value: "spf=softfail; dkim=none"}},
	}
	svc := NewIngestionService(&fakeTokens{}, mail, inspector, staticPolicy(false), 0.7, zap.NewNop())

	report, err := svc.Ingest(context.Background())
	require.NoError(t, err)

	require.NotNil(t, inspector.req)
	assert.Equal(t, "Hello world", inspector.req.Body)
	assert.Equal(t, authresults.SoftFail, inspector.req.SPF)
	assert.Equal(t, authresults.None, inspector.req.DKIM)
	assert.True(t, inspector.req.Attachments)

	require.NotNil(t, report.Inspection)
	assert.True(t, report.Inspection.IsSuspicious)
}

func TestIngest_TrustedSenderSkipsInspection(t *testing.T) {
	inspector := &fakeInspector{result: &InspectionResult{}}
	svc := NewIngestionService(&fakeTokens{}, &fakeMail{msg: sampleMessage()}, inspector, staticPolicy(true), 0.7, zap.NewNop())

	report, err := svc.Ingest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, inspector.req)
	assert.Nil(t, report.Inspection)
}

func TestIngest_InspectionFailureDegrades(t *testing.T) {
	inspector := &fakeInspector{err: errors.New("rate limited")}
	svc := NewIngestionService(&fakeTokens{}, &fakeMail{msg: sampleMessage()}, inspector, nil, 0.7, zap.NewNop())

	report, err := svc.Ingest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report.Inspection)
}

func TestSuspicious(t *testing.T) {
	svc := NewIngestionService(nil, nil, nil, nil, 0.5, zap.NewNop())
	assert.True(t, svc.Suspicious(&InspectionResult{Score: 0.5}))
	assert.False(t, svc.Suspicious(&InspectionResult{Score: 0.49}))

	disabled := NewIngestionService(nil, nil, nil, nil, 0, zap.NewNop())
	assert.False(t, disabled.Suspicious(&InspectionResult{Score: 1}))
}

func TestNormalizeBody(t *testing.T) {
	text, err := NormalizeBody(MessageBody{ContentType: "HTML", Content: "<div>Hi <b>there</b></div>"})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", text)
}
