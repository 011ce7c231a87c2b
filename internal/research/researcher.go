package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/harshad-lohande/agentic-sales-copilot/common/llm"
	"github.com/harshad-lohande/agentic-sales-copilot/common/logger"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
)

// Searcher is the web search surface the researcher depends on.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]SearchResult, error)
}

type SummaryResponse struct {
	ResearchSummary string `json:"research_summary" jsonschema_description:"Concise summary of the most relevant and recent findings about the prospect and their company"`
}

var summarySchema = llm.GenerateSchema[SummaryResponse]()

// Researcher runs targeted web searches about a prospect and distills the
// raw results into a short brief a reply writer can use.
type Researcher struct {
	searcher Searcher
	llm      llm.Client
}

func NewResearcher(searcher Searcher, client llm.Client) *Researcher {
	return &Researcher{searcher: searcher, llm: client}
}

// Research returns a research brief for the prospect, or an empty string
// when nothing relevant surfaced. Individual query failures are tolerated;
// the brief is built from whatever queries succeeded.
func (r *Researcher) Research(ctx context.Context, p model.Prospect) (string, error) {
	queries := buildQueries(p)

	var results []SearchResult
	var failures int
	for _, query := range queries {
		found, err := r.searcher.Search(ctx, SearchRequest{
			Query:       query,
			SearchDepth: "basic",
			MaxResults:  2,
			TimeRange:   "week",
		})
		if err != nil {
			failures++
			slog.WarnContext(ctx, "web search query failed",
				"query", query,
				"error", err)
			continue
		}
		results = append(results, found...)
	}
	if failures == len(queries) {
		return "", fmt.Errorf("all %d research queries failed", len(queries))
	}
	if len(results) == 0 {
		slog.InfoContext(ctx, "web research returned no results",
			"prospect_email", p.Email)
		return "", nil
	}

	summary, err := r.summarize(ctx, p, consolidate(results))
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "web research complete",
		"prospect_email", p.Email,
		"result_count", len(results),
		"brief_preview", logger.Truncate(summary, 120))
	return summary, nil
}

func buildQueries(p model.Prospect) []string {
	fullName := strings.TrimSpace(p.FirstName + " " + p.LastName)
	return []string{
		fmt.Sprintf("%q %s recent news", fullName, p.Company),
		fmt.Sprintf("%s achievements or milestones", p.Company),
		fmt.Sprintf("%q recent interviews or blog posts", fullName),
		fmt.Sprintf("%q %s linkedin profile", fullName, p.Company),
		fmt.Sprintf("%s linkedin page", p.Company),
	}
}

func consolidate(results []SearchResult) string {
	parts := make([]string, len(results))
	for i, res := range results {
		parts[i] = fmt.Sprintf("URL: %s\nContent: %s", res.URL, res.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func (r *Researcher) summarize(ctx context.Context, p model.Prospect, rawResults string) (string, error) {
	prompt := fmt.Sprintf("Prospect: %s %s, %s at %s\n\nSearch results:\n\n%s",
		p.FirstName, p.LastName, p.Position, p.Company, rawResults)

	var response SummaryResponse
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		_, err = r.llm.Chat(ctx, llm.Request{
			SystemPrompt: summarizerSystemPrompt,
			UserPrompt:   prompt,
			SchemaName:   "research_summary",
			Schema:       summarySchema,
			Temperature:  llm.Temp(0.2),
		}, &response)
		if err == nil {
			break
		}
		if !llm.IsRetryable(ctx, err) {
			return "", fmt.Errorf("research summarization: %w", err)
		}
		slog.WarnContext(ctx, "research summarization retry",
			"prospect_email", p.Email,
			"attempt", attempt+1,
			"error", err)
		time.Sleep(time.Duration(1<<attempt) * time.Second)
	}
	if err != nil {
		return "", fmt.Errorf("research summarization after 3 attempts: %w", err)
	}

	return strings.TrimSpace(response.ResearchSummary), nil
}

const summarizerSystemPrompt = `You distill raw web search results into a short research brief about a sales prospect.

Rules:
- Keep only facts that are relevant, recent, and specific to the named person or their company.
- Prefer concrete events: funding rounds, product launches, published interviews, role changes.
- Discard results about unrelated people or companies with similar names.
- Write 3-6 sentences of plain prose. No bullet points, no URLs.
- If nothing in the results is genuinely about this prospect, return an empty summary.`
