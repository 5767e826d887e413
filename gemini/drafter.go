package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/prospect"
)

// DefaultSenderName signs drafts when no sender name is given.
const DefaultSenderName = "The Team"

// Ensure Drafter implements prospect.Drafter at compile time.
var _ prospect.Drafter = (*Drafter)(nil)

// Drafter implements prospect.Drafter using Google Gemini.
type Drafter struct {
	client
}

// NewDrafter creates a new Drafter. Pass client.Models of a *genai.Client.
func NewDrafter(gen ContentGenerator, opts ...Option) *Drafter {
	return &Drafter{client: newClient(gen, opts)}
}

// Draft writes a personalized cold email from analysis.
func (d *Drafter) Draft(ctx context.Context, analysis *prospect.Analysis, opts prospect.DraftOptions) (*prospect.EmailDraft, error) {
	if err := analysis.Validate(); err != nil {
		return nil, err
	}

	tone := prospect.ParseTone(string(opts.Tone))
	prompt, err := BuildDraftPrompt(analysis, tone, opts.SenderName)
	if err != nil {
		return nil, err
	}

	var out struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := d.generateJSON(ctx, BuildDraftSystemPrompt(d.seller), prompt, &out); err != nil {
		return nil, err
	}

	draft := &prospect.EmailDraft{
		Subject: strings.TrimSpace(out.Subject),
		Body:    strings.TrimSpace(out.Body),
		Tone:    tone,
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return draft, nil
}

// BuildDraftSystemPrompt returns the copywriter instructions for seller.
func BuildDraftSystemPrompt(seller string) string {
	return fmt.Sprintf(`You are an expert cold email copywriter for %s

You write outreach emails that:
- Feel personally written, not templated
- Reference specific details from the prospect's website
- Lead with value and insight, not a sales pitch
- Are concise (under 200 words for the body)
- Have a single, clear call to action
- Use a subject line under 60 characters that is intriguing but not clickbait`, seller)
}

// BuildDraftPrompt builds the user prompt for drafting an email.
func BuildDraftPrompt(analysis *prospect.Analysis, tone prospect.Tone, senderName string) (string, error) {
	if senderName == "" {
		senderName = DefaultSenderName
	}
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding analysis: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Write a personalized cold outreach email based on this prospect analysis.\n\n")
	sb.WriteString("<analysis>\n")
	sb.Write(data)
	sb.WriteString("\n</analysis>\n\n")
	fmt.Fprintf(&sb, "Tone: %s\n%s\n\n", tone, tone.Description())
	fmt.Fprintf(&sb, "Sender Name: %s\n\n", senderName)
	sb.WriteString(`Return a JSON object with exactly these fields:
{
  "subject": "Email subject line",
  "body": "The full email body. Open with a specific detail from their website, include the value proposition, end with a low-friction call to action and sign off with the sender name."
}

Never open with "I hope this email finds you well" or similar cliches.`)
	return sb.String(), nil
}
