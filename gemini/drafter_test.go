package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/prospect"
	"github.com/fwojciec/prospect/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestDrafter_Draft(t *testing.T) {
	t.Parallel()

	var gotPrompt, gotSystem string
	gen := &generator{
		GenerateContentFn: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotPrompt = contents[0].Parts[0].Text
			gotSystem = config.SystemInstruction.Parts[0].Text
			return textResponse(`{"subject":" Payload planning at Acme ","body":"Hi Acme team,\n\nWorth a 15-minute chat?\n\nJane"}`), nil
		},
	}

	draft, err := gemini.NewDrafter(gen, gemini.WithSeller("Orbit Labs.")).Draft(context.Background(),
		&prospect.Analysis{CompanyName: "Acme", RecommendedAngle: "Payload planning"},
		prospect.DraftOptions{Tone: prospect.ToneBold, SenderName: "Jane"},
	)

	require.NoError(t, err)
	assert.Equal(t, "Payload planning at Acme", draft.Subject)
	assert.Equal(t, "Hi Acme team,\n\nWorth a 15-minute chat?\n\nJane", draft.Body)
	assert.Equal(t, prospect.ToneBold, draft.Tone)
	assert.Empty(t, draft.To)
	assert.Contains(t, gotPrompt, "Tone: bold")
	assert.Contains(t, gotPrompt, prospect.ToneBold.Description())
	assert.Contains(t, gotPrompt, "Sender Name: Jane")
	assert.Contains(t, gotPrompt, `"recommended_angle": "Payload planning"`)
	assert.Contains(t, gotSystem, "Orbit Labs.")
}

func TestDrafter_Draft_UnknownToneBecomesProfessional(t *testing.T) {
	t.Parallel()

	draft, err := gemini.NewDrafter(respondWith(`{"subject":"Hi","body":"Hello"}`)).Draft(context.Background(),
		&prospect.Analysis{CompanyName: "Acme"},
		prospect.DraftOptions{Tone: prospect.Tone("sarcastic")},
	)

	require.NoError(t, err)
	assert.Equal(t, prospect.ToneProfessional, draft.Tone)
}

func TestDrafter_Draft_EmptyBody(t *testing.T) {
	t.Parallel()

	_, err := gemini.NewDrafter(respondWith(`{"subject":"Hi","body":"  "}`)).Draft(context.Background(),
		&prospect.Analysis{CompanyName: "Acme"},
		prospect.DraftOptions{},
	)

	assert.Equal(t, prospect.EINVALID, prospect.ErrorCode(err))
}

func TestDrafter_Draft_InvalidAnalysis(t *testing.T) {
	t.Parallel()

	_, err := gemini.NewDrafter(respondWith(`{}`)).Draft(context.Background(), &prospect.Analysis{}, prospect.DraftOptions{})

	assert.Equal(t, prospect.EINVALID, prospect.ErrorCode(err))
}

func TestBuildDraftPrompt_DefaultSenderName(t *testing.T) {
	t.Parallel()

	prompt, err := gemini.BuildDraftPrompt(&prospect.Analysis{CompanyName: "Acme"}, prospect.ToneProfessional, "")

	require.NoError(t, err)
	assert.Contains(t, prompt, "Sender Name: "+gemini.DefaultSenderName)
}
