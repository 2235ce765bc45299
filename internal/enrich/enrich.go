package enrich

import "context"

// Input is everything the pipeline knows about a post at enrichment time.
type Input struct {
	Transcript string
	Caption    string
	Mentions   []string
	Hashtags   []string
	AgentName  string
	PostNumber int
}

// Result is the enriched content written to staging and the store.
type Result struct {
	Original       string
	Cleaned        string
	Caption        string
	Title          string
	TitleGenerated bool
}

// Enrich cleans the transcript, builds the caption block, and titles the
// post from the cleaned text. It never fails.
func (e *Enricher) Enrich(ctx context.Context, in Input) Result {
	cleaned := e.CleanText(ctx, in.Transcript)
	caption := e.EnhanceCaption(in.Caption, in.Mentions, in.Hashtags)
	title, generated := e.Title(ctx, cleaned, caption, in.AgentName, in.PostNumber)
	return Result{
		Original:       in.Transcript,
		Cleaned:        cleaned,
		Caption:        caption,
		Title:          title,
		TitleGenerated: generated,
	}
}
