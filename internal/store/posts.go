package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"reelscribe/internal/logging"
)

var postColumns = []string{
	"id", "agent_id", "shortcode", "post_number", "title", "content", "caption",
	"raw_caption", "transcription", "cleaned_transcription", "thumbnail",
	"source_url", "captured_at", "created_at",
}

var errAgentMissing = errors.New("agent does not exist")

// PostID formats the identifier of post number n for an agent.
func PostID(agentID string, number int, epoch int64) string {
	return fmt.Sprintf("%s-post-%03d-%d", agentID, number, epoch)
}

// ThumbnailRef is the library-relative reference stored for a post thumbnail.
func ThumbnailRef(agentID string, number int) string {
	return fmt.Sprintf("/agents/%s/posts/post_%d_thumbnail.jpg", agentID, number)
}

// ProfileImageRef is the library-relative reference stored for an agent's
// profile picture.
func ProfileImageRef(agentID string) string {
	return fmt.Sprintf("/agents/%s/profile/profile_picture.jpg", agentID)
}

func scanPost(row interface{ Scan(dest ...any) error }) (Post, error) {
	var (
		post     Post
		captured sql.NullString
		created  sql.NullString
	)
	if err := row.Scan(
		&post.ID, &post.AgentID, &post.Shortcode, &post.Number, &post.Title,
		&post.Content, &post.Caption, &post.RawCaption, &post.Transcription,
		&post.CleanedTranscription, &post.Thumbnail, &post.SourceURL,
		&captured, &created,
	); err != nil {
		return Post{}, err
	}
	post.CapturedAt = parseTime(captured)
	post.CreatedAt = parseTime(created)
	return post, nil
}

// NextPostNumber returns 1 + the number of stored posts for the agent. The
// value is advisory; SavePost assigns the authoritative number.
func (s *Store) NextPostNumber(ctx context.Context, agentID string) (int, error) {
	n, err := count(ctx, s.db, s.sb.Select("COUNT(1)").From("posts").Where(sq.Eq{"agent_id": agentID}))
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n + 1, nil
}

// SavePost stores a post exactly once per (agent, shortcode). The
// existence check, numbering, and insert share one locked transaction.
// Duplicate is not an error; Failed carries the cause in Err.
func (s *Store) SavePost(ctx context.Context, agentID, shortcode string, fields PostFields) SaveResult {
	var result SaveResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = s.savePostTx(ctx, tx, agentID, shortcode, fields)
		return err
	})
	if err != nil {
		if violation, onShortcode := isUniqueViolation(err); violation && onShortcode {
			return SaveResult{Outcome: Duplicate}
		}
		s.logger.Debug("save post failed",
			logging.String(logging.FieldAgentID, agentID),
			logging.String(logging.FieldShortcode, shortcode),
			logging.Error(err),
		)
		return SaveResult{Outcome: Failed, Err: fmt.Errorf("save post %s: %w", shortcode, err)}
	}
	return result
}

func (s *Store) savePostTx(ctx context.Context, tx *sql.Tx, agentID, shortcode string, fields PostFields) (SaveResult, error) {
	lock := s.sb.Select("id").From("agents").Where(sq.Eq{"id": agentID})
	if s.dialect.lockSuffix != "" {
		lock = lock.Suffix(s.dialect.lockSuffix)
	}
	query, args, err := lock.ToSql()
	if err != nil {
		return SaveResult{}, fmt.Errorf("build agent lock: %w", err)
	}
	var locked string
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&locked); err != nil {
		if isNoRows(err) {
			return SaveResult{}, errAgentMissing
		}
		return SaveResult{}, fmt.Errorf("lock agent: %w", err)
	}

	key := sq.Eq{"agent_id": agentID, "shortcode": shortcode}
	existing, err := count(ctx, tx, s.sb.Select("COUNT(1)").From("posts").Where(key))
	if err != nil {
		return SaveResult{}, fmt.Errorf("check post: %w", err)
	}
	filtered, err := count(ctx, tx, s.sb.Select("COUNT(1)").From("filtered_posts").Where(key))
	if err != nil {
		return SaveResult{}, fmt.Errorf("check filtered: %w", err)
	}
	if existing > 0 || filtered > 0 {
		return SaveResult{Outcome: Duplicate}, nil
	}

	total, err := count(ctx, tx, s.sb.Select("COUNT(1)").From("posts").Where(sq.Eq{"agent_id": agentID}))
	if err != nil {
		return SaveResult{}, fmt.Errorf("count posts: %w", err)
	}
	number := total + 1
	now := s.now()
	id := PostID(agentID, number, now.Unix())
	thumbnail := ""
	if fields.HasThumbnail {
		thumbnail = ThumbnailRef(agentID, number)
	}

	query, args, err = s.sb.Insert("posts").
		Columns(postColumns...).
		Values(
			id, agentID, shortcode, number, fields.Title, fields.Content, fields.Caption,
			fields.RawCaption, fields.Transcription, fields.CleanedTranscription, thumbnail,
			fields.SourceURL, nullableTime(fields.CapturedAt), formatTime(now),
		).
		ToSql()
	if err != nil {
		return SaveResult{}, fmt.Errorf("build post insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return SaveResult{}, fmt.Errorf("insert post: %w", err)
	}
	return SaveResult{Outcome: Saved, PostID: id, PostNumber: number, Thumbnail: thumbnail}, nil
}

// GetPost returns a post by id.
func (s *Store) GetPost(ctx context.Context, id string) (Post, error) {
	query, args, err := s.sb.Select(postColumns...).From("posts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Post{}, fmt.Errorf("build post query: %w", err)
	}
	post, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if isNoRows(err) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// ListPosts returns an agent's posts in number order.
func (s *Store) ListPosts(ctx context.Context, agentID string) ([]Post, error) {
	return s.queryPosts(ctx, s.sb.Select(postColumns...).From("posts").
		Where(sq.Eq{"agent_id": agentID}).
		OrderBy("post_number"))
}

// PostsWithGenericTitles returns posts whose title is empty or contains any
// of patterns. An empty agentID covers every agent.
func (s *Store) PostsWithGenericTitles(ctx context.Context, patterns []string, agentID string) ([]Post, error) {
	match := sq.Or{sq.Eq{"title": ""}}
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		match = append(match, sq.Like{"title": "%" + pattern + "%"})
	}
	builder := s.sb.Select(postColumns...).From("posts").Where(match)
	if agentID != "" {
		builder = builder.Where(sq.Eq{"agent_id": agentID})
	}
	return s.queryPosts(ctx, builder.OrderBy("agent_id", "post_number"))
}

func (s *Store) queryPosts(ctx context.Context, builder sq.SelectBuilder) ([]Post, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build posts query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// UpdateTitle rewrites a post title. Identity and numbering are untouched.
func (s *Store) UpdateTitle(ctx context.Context, postID, title string) error {
	query, args, err := s.sb.Update("posts").Set("title", title).Where(sq.Eq{"id": postID}).ToSql()
	if err != nil {
		return fmt.Errorf("build title update: %w", err)
	}
	var res sql.Result
	if err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
