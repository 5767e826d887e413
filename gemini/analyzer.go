package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/prospect"
)

// MaxAnalysisChars bounds the corpus summary sent for analysis.
const MaxAnalysisChars = 15000

const analysisTruncationMarker = "\n\n... [content truncated for analysis]"

// Ensure Analyzer implements prospect.Analyzer at compile time.
var _ prospect.Analyzer = (*Analyzer)(nil)

// Analyzer implements prospect.Analyzer using Google Gemini.
type Analyzer struct {
	client
}

// NewAnalyzer creates a new Analyzer. Pass client.Models of a *genai.Client.
func NewAnalyzer(gen ContentGenerator, opts ...Option) *Analyzer {
	return &Analyzer{client: newClient(gen, opts)}
}

// Analyze asks the model for a structured reading of corpus.
func (a *Analyzer) Analyze(ctx context.Context, corpus *prospect.Corpus) (*prospect.Analysis, error) {
	if corpus.Empty() {
		return nil, prospect.Errorf(prospect.EINVALID, "corpus has no pages")
	}

	var analysis prospect.Analysis
	if err := a.generateJSON(ctx, BuildAnalysisSystemPrompt(a.seller), BuildAnalysisPrompt(corpus), &analysis); err != nil {
		return nil, err
	}
	if analysis.CompanyName == "" {
		analysis.CompanyName = corpus.CompanyName
	}
	if err := analysis.Validate(); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// BuildAnalysisSystemPrompt returns the analyst instructions for seller.
func BuildAnalysisSystemPrompt(seller string) string {
	return fmt.Sprintf(`You are a senior business development analyst at %s

Your job is to analyze a prospective client's website content and produce a structured analysis that will be used to craft a personalized outreach email.

Be specific and insightful. Reference actual details from the website and avoid generic observations. Think like a consultant identifying real opportunities, not a salesperson pushing features.`, seller)
}

// BuildAnalysisPrompt builds the user prompt for corpus. The summary is
// truncated to MaxAnalysisChars.
func BuildAnalysisPrompt(corpus *prospect.Corpus) string {
	content := corpus.Summary
	if utf8.RuneCountInString(content) > MaxAnalysisChars {
		content = string([]rune(content)[:MaxAnalysisChars]) + analysisTruncationMarker
	}

	var sb strings.Builder
	sb.WriteString("Analyze the following website content for a prospective client. Produce a detailed JSON analysis.\n\n")
	fmt.Fprintf(&sb, "Website URL: %s\n", corpus.BaseURL)
	fmt.Fprintf(&sb, "Company Name (detected): %s\n\n", corpus.CompanyName)
	sb.WriteString("<content>\n")
	sb.WriteString(content)
	sb.WriteString("\n</content>\n\n")
	sb.WriteString(`Return a JSON object with exactly these fields:
{
  "company_name": "The company's actual name",
  "company_summary": "2-3 sentence summary of what the company does, their market and their scale",
  "industry": "Their primary industry or vertical",
  "services_offered": ["Their main products or services"],
  "pain_points": ["Specific pain points grounded in the content"],
  "ai_opportunities": ["Specific, practical AI opportunities tied to their business"],
  "value_proposition": "A tailored 2-3 sentence value proposition",
  "recommended_angle": "The single best hook for the outreach email"
}

Every pain point and opportunity must be grounded in evidence from the content. If the content is limited, make reasonable inferences from the industry.`)
	return sb.String()
}
