package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// ListShortcodes loads the stored and filtered shortcodes for an agent in
// two queries.
func (s *Store) ListShortcodes(ctx context.Context, agentID string) (existing Set, filtered Set, err error) {
	existing, err = s.shortcodeSet(ctx, "posts", agentID)
	if err != nil {
		return nil, nil, err
	}
	filtered, err = s.shortcodeSet(ctx, "filtered_posts", agentID)
	if err != nil {
		return nil, nil, err
	}
	return existing, filtered, nil
}

func (s *Store) shortcodeSet(ctx context.Context, table, agentID string) (Set, error) {
	query, args, err := s.sb.Select("shortcode").From(table).Where(sq.Eq{"agent_id": agentID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s shortcode query: %w", table, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s shortcodes: %w", table, err)
	}
	defer rows.Close()

	set := make(Set)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan shortcode: %w", err)
		}
		set.Add(code)
	}
	return set, rows.Err()
}

// RecordFiltered marks a shortcode as intentionally excluded. The first
// reason wins. A shortcode already stored as a post is not recorded and
// ErrAlreadyStored is returned. The boolean reports whether a new row was
// written.
func (s *Store) RecordFiltered(ctx context.Context, agentID, shortcode, reason string) (bool, error) {
	insert, args, err := s.sb.Insert("filtered_posts").
		Columns("agent_id", "shortcode", "reason", "created_at").
		Values(agentID, shortcode, reason, s.timestamp()).
		Suffix("ON CONFLICT (agent_id, shortcode) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build filtered insert: %w", err)
	}

	var recorded bool
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		recorded = false
		stored, err := count(ctx, tx, s.sb.Select("COUNT(1)").From("posts").
			Where(sq.Eq{"agent_id": agentID, "shortcode": shortcode}))
		if err != nil {
			return fmt.Errorf("check post: %w", err)
		}
		if stored > 0 {
			return ErrAlreadyStored
		}
		res, err := tx.ExecContext(ctx, insert, args...)
		if err != nil {
			return fmt.Errorf("insert filtered: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("filtered rows affected: %w", err)
		}
		recorded = n > 0
		return nil
	})
	if errors.Is(err, ErrAlreadyStored) {
		return false, ErrAlreadyStored
	}
	if err != nil {
		return false, fmt.Errorf("record filtered %s: %w", shortcode, err)
	}
	return recorded, nil
}

// FilteredReason returns the recorded reason for a shortcode.
func (s *Store) FilteredReason(ctx context.Context, agentID, shortcode string) (string, bool, error) {
	query, args, err := s.sb.Select("reason").From("filtered_posts").
		Where(sq.Eq{"agent_id": agentID, "shortcode": shortcode}).ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build reason query: %w", err)
	}
	var reason string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&reason)
	if isNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get filtered reason: %w", err)
	}
	return reason, true, nil
}

// ReasonKind strips a trailing numeric detail so insufficient_chars_12 and
// insufficient_chars_30 group together.
func ReasonKind(reason string) string {
	i := strings.LastIndexByte(reason, '_')
	if i <= 0 || i == len(reason)-1 {
		return reason
	}
	for _, r := range reason[i+1:] {
		if r < '0' || r > '9' {
			return reason
		}
	}
	return reason[:i]
}
