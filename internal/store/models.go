package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("store: not found")

// ErrAlreadyStored is returned by RecordFiltered when the shortcode is
// already saved as a post.
var ErrAlreadyStored = errors.New("store: shortcode already stored")

// Agent is a profile owner whose posts are ingested.
type Agent struct {
	ID           string    `json:"id"`
	Handle       string    `json:"handle"`
	Name         string    `json:"name"`
	Bio          string    `json:"bio"`
	Location     string    `json:"location"`
	ProfileImage string    `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
}

// AgentProfile carries the attributes used when an agent row is created.
type AgentProfile struct {
	Name         string
	Bio          string
	Location     string
	ProfileImage string
	// HasPicture stores ProfileImageRef for the new id when ProfileImage is empty.
	HasPicture bool
}

// Post is a persisted, enriched post.
type Post struct {
	ID                   string    `json:"id"`
	AgentID              string    `json:"agent_id"`
	Shortcode            string    `json:"shortcode"`
	Number               int       `json:"post_number"`
	Title                string    `json:"title"`
	Content              string    `json:"content"`
	Caption              string    `json:"caption"`
	RawCaption           string    `json:"raw_caption"`
	Transcription        string    `json:"transcription"`
	CleanedTranscription string    `json:"cleaned_transcription"`
	Thumbnail            string    `json:"thumbnail"`
	SourceURL            string    `json:"source_url"`
	CapturedAt           time.Time `json:"captured_at"`
	CreatedAt            time.Time `json:"created_at"`
}

// PostFields are the values supplied by the pipeline; id, number, and
// thumbnail reference are assigned by SavePost.
type PostFields struct {
	Title                string
	Content              string
	Caption              string
	RawCaption           string
	Transcription        string
	CleanedTranscription string
	SourceURL            string
	CapturedAt           time.Time
	HasThumbnail         bool
}

// SaveOutcome classifies a SavePost attempt.
type SaveOutcome int

const (
	// Saved means a new row was inserted.
	Saved SaveOutcome = iota + 1
	// Duplicate means the shortcode was already stored or filtered for the agent.
	Duplicate
	// Failed means the attempt errored; SaveResult.Err holds the cause.
	Failed
)

func (o SaveOutcome) String() string {
	switch o {
	case Saved:
		return "saved"
	case Duplicate:
		return "duplicate"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SaveResult reports a SavePost attempt.
type SaveResult struct {
	Outcome    SaveOutcome
	PostID     string
	PostNumber int
	Thumbnail  string
	Err        error
}

// FilteredPost is an intentionally excluded shortcode.
type FilteredPost struct {
	AgentID   string    `json:"agent_id"`
	Shortcode string    `json:"shortcode"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Set is a string membership set.
type Set map[string]struct{}

// Has reports membership.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Add inserts key.
func (s Set) Add(key string) {
	s[key] = struct{}{}
}

// AgentStats summarizes one agent.
type AgentStats struct {
	AgentID  string `json:"agent_id"`
	Handle   string `json:"handle"`
	Name     string `json:"name"`
	Posts    int    `json:"posts"`
	Filtered int    `json:"filtered"`
}

// Stats summarizes the whole store.
type Stats struct {
	Agents        int            `json:"agents"`
	Posts         int            `json:"posts"`
	Filtered      int            `json:"filtered"`
	FilterReasons map[string]int `json:"filter_reasons"`
	PerAgent      []AgentStats   `json:"per_agent"`
}
