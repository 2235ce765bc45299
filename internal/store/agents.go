package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"reelscribe/internal/logging"
	"reelscribe/internal/textutil"
)

var agentColumns = []string{"id", "handle", "name", "bio", "location", "profile_image", "created_at"}

func scanAgent(row interface{ Scan(dest ...any) error }) (Agent, error) {
	var (
		agent   Agent
		created sql.NullString
	)
	if err := row.Scan(&agent.ID, &agent.Handle, &agent.Name, &agent.Bio, &agent.Location, &agent.ProfileImage, &created); err != nil {
		return Agent{}, err
	}
	agent.CreatedAt = parseTime(created)
	return agent, nil
}

// FindAgent looks up an agent by handle.
func (s *Store) FindAgent(ctx context.Context, handle string) (Agent, bool, error) {
	return s.selectAgent(ctx, s.db, sq.Eq{"handle": textutil.NormalizeHandle(handle)})
}

// GetAgent looks up an agent by id.
func (s *Store) GetAgent(ctx context.Context, id string) (Agent, bool, error) {
	return s.selectAgent(ctx, s.db, sq.Eq{"id": id})
}

func (s *Store) selectAgent(ctx context.Context, q queryRower, where sq.Eq) (Agent, bool, error) {
	query, args, err := s.sb.Select(agentColumns...).From("agents").Where(where).ToSql()
	if err != nil {
		return Agent{}, false, fmt.Errorf("build agent query: %w", err)
	}
	agent, err := scanAgent(q.QueryRowContext(ctx, query, args...))
	if isNoRows(err) {
		return Agent{}, false, nil
	}
	if err != nil {
		return Agent{}, false, fmt.Errorf("select agent: %w", err)
	}
	return agent, true, nil
}

// CreateAgent inserts an agent for handle. When another writer created the
// same handle first, that row is returned instead.
func (s *Store) CreateAgent(ctx context.Context, handle string, profile AgentProfile) (Agent, error) {
	agent, _, err := s.createAgent(ctx, handle, profile)
	return agent, err
}

func (s *Store) createAgent(ctx context.Context, handle string, profile AgentProfile) (Agent, bool, error) {
	handle = textutil.NormalizeHandle(handle)
	if handle == "" {
		return Agent{}, false, fmt.Errorf("create agent: empty handle")
	}
	now := s.now()
	id := textutil.AgentIDFromHandle(handle, now.Unix())
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = textutil.DisplayNameFromHandle(handle)
	}
	image := strings.TrimSpace(profile.ProfileImage)
	if image == "" && profile.HasPicture {
		image = ProfileImageRef(id)
	}

	query, args, err := s.sb.Insert("agents").
		Columns(agentColumns...).
		Values(id, handle, name, profile.Bio, profile.Location, image, formatTime(now)).
		Suffix("ON CONFLICT (handle) DO NOTHING").
		ToSql()
	if err != nil {
		return Agent{}, false, fmt.Errorf("build agent insert: %w", err)
	}

	var (
		agent   Agent
		found   bool
		created bool
	)
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert agent: %w", err)
		}
		n, _ := res.RowsAffected()
		created = n > 0
		if !created {
			s.logger.Debug("agent already created by another writer", logging.String("handle", handle))
		}
		agent, found, err = s.selectAgent(ctx, tx, sq.Eq{"handle": handle})
		return err
	})
	if err != nil {
		return Agent{}, false, err
	}
	if !found {
		return Agent{}, false, fmt.Errorf("create agent %s: row missing after insert", handle)
	}
	return agent, created, nil
}

// EnsureAgent returns the agent for handle, creating it when absent. The
// boolean reports whether a row was created by this call.
func (s *Store) EnsureAgent(ctx context.Context, handle string, profile AgentProfile) (Agent, bool, error) {
	agent, found, err := s.FindAgent(ctx, handle)
	if err != nil {
		return Agent{}, false, err
	}
	if found {
		return agent, false, nil
	}
	return s.createAgent(ctx, handle, profile)
}

// ListAgents returns every agent ordered by creation time.
func (s *Store) ListAgents(ctx context.Context) ([]Agent, error) {
	query, args, err := s.sb.Select(agentColumns...).From("agents").OrderBy("created_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build agents query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, agent)
	}
	return agents, rows.Err()
}
