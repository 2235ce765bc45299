package store

import (
	"context"
	"fmt"
)

// Stats counts agents, posts, and filtered records, with a per-agent
// breakdown and filter reasons grouped by ReasonKind.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{FilterReasons: map[string]int{}}

	var err error
	if stats.Agents, err = count(ctx, s.db, s.sb.Select("COUNT(1)").From("agents")); err != nil {
		return Stats{}, fmt.Errorf("count agents: %w", err)
	}
	if stats.Posts, err = count(ctx, s.db, s.sb.Select("COUNT(1)").From("posts")); err != nil {
		return Stats{}, fmt.Errorf("count posts: %w", err)
	}
	if stats.Filtered, err = count(ctx, s.db, s.sb.Select("COUNT(1)").From("filtered_posts")); err != nil {
		return Stats{}, fmt.Errorf("count filtered: %w", err)
	}

	if err := s.collectReasons(ctx, stats.FilterReasons); err != nil {
		return Stats{}, err
	}

	query, args, err := s.sb.Select(
		"a.id", "a.handle", "a.name",
		"(SELECT COUNT(1) FROM posts p WHERE p.agent_id = a.id)",
		"(SELECT COUNT(1) FROM filtered_posts f WHERE f.agent_id = a.id)",
	).From("agents a").OrderBy("a.created_at", "a.id").ToSql()
	if err != nil {
		return Stats{}, fmt.Errorf("build agent stats query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("agent stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var row AgentStats
		if err := rows.Scan(&row.AgentID, &row.Handle, &row.Name, &row.Posts, &row.Filtered); err != nil {
			return Stats{}, fmt.Errorf("scan agent stats: %w", err)
		}
		stats.PerAgent = append(stats.PerAgent, row)
	}
	return stats, rows.Err()
}

func (s *Store) collectReasons(ctx context.Context, into map[string]int) error {
	query, args, err := s.sb.Select("reason", "COUNT(1)").From("filtered_posts").GroupBy("reason").ToSql()
	if err != nil {
		return fmt.Errorf("build reasons query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("filter reasons: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			reason string
			n      int
		)
		if err := rows.Scan(&reason, &n); err != nil {
			return fmt.Errorf("scan reason: %w", err)
		}
		into[ReasonKind(reason)] += n
	}
	return rows.Err()
}
