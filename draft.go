package prospect

import (
	"context"
	"strings"
)

// Tone selects the writing style of a drafted email.
type Tone string

// Supported tones.
const (
	ToneProfessional   Tone = "professional"
	ToneConversational Tone = "conversational"
	ToneBold           Tone = "bold"
	ToneConsultative   Tone = "consultative"
)

// Tones lists the supported tones in display order.
var Tones = []Tone{ToneProfessional, ToneConversational, ToneBold, ToneConsultative}

var toneDescriptions = map[Tone]string{
	ToneProfessional:   "Professional and polished. Business-appropriate language, clear and direct.",
	ToneConversational: "Friendly and conversational. Warm but still professional. Like talking to a smart colleague.",
	ToneBold:           "Confident and bold. Direct, slightly provocative, pattern-interrupting. Stands out in an inbox.",
	ToneConsultative:   "Thoughtful and consultative. Lead with insights and questions. Position as a strategic advisor.",
}

// ParseTone maps s to a supported tone. Unknown values become ToneProfessional.
func ParseTone(s string) Tone {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := toneDescriptions[t]; ok {
		return t
	}
	return ToneProfessional
}

// Description returns the style guidance for the tone.
func (t Tone) Description() string {
	if d, ok := toneDescriptions[t]; ok {
		return d
	}
	return toneDescriptions[ToneProfessional]
}

// EmailDraft is a drafted outreach email.
type EmailDraft struct {
	To      string `json:"to_address"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Tone    Tone   `json:"tone"`
}

// Validate returns an error if the draft cannot be sent.
func (d *EmailDraft) Validate() error {
	if strings.TrimSpace(d.Subject) == "" {
		return Errorf(EINVALID, "email subject required")
	}
	if strings.TrimSpace(d.Body) == "" {
		return Errorf(EINVALID, "email body required")
	}
	return nil
}

// DraftOptions controls how a draft is written.
type DraftOptions struct {
	Tone       Tone
	SenderName string
}

// Drafter writes a personalized email from an analysis.
type Drafter interface {
	Draft(ctx context.Context, analysis *Analysis, opts DraftOptions) (*EmailDraft, error)
}

// SendOptions identifies the recipient of a send.
type SendOptions struct {
	To string
}

// Sender delivers a drafted email.
type Sender interface {
	// Send returns EAUTH for rejected credentials, EINVALID for a refused
	// recipient and EUNAVAILABLE when the relay cannot be reached.
	Send(ctx context.Context, draft *EmailDraft, opts SendOptions) error
}
