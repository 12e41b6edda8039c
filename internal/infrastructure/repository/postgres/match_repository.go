package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-live/internal/domain/match"
	qb "github.com/riskibarqy/league-live/internal/platform/querybuilder"
)

// matchBatchSize keeps one INSERT well under the bind parameter limit.
const matchBatchSize = 500

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) error {
	query, args, err := qb.InsertModel("matches", matchToInsertModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert match %s: %w", item.ID, err)
	}
	return nil
}

// CreateBatch writes every match in one transaction.
func (r *MatchRepository) CreateBatch(ctx context.Context, items []match.Match) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for start := 0; start < len(items); start += matchBatchSize {
		end := min(start+matchBatchSize, len(items))

		builder := qb.InsertInto("matches")
		for i, item := range items[start:end] {
			cols, vals, err := qb.ColumnsAndValues(matchToInsertModel(item))
			if err != nil {
				return fmt.Errorf("map match %s: %w", item.ID, err)
			}
			if i == 0 {
				builder.Columns(cols...)
			}
			builder.Values(vals...)
		}

		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert matches query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert matches %d..%d: %w", start, end, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create matches tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("public_id", matchID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match: %w", err)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match) error {
	model := matchToInsertModel(item)
	query, args, err := qb.Update("matches").
		Set("matchday", model.Matchday).
		Set("scheduled_at", model.ScheduledAt).
		Set("venue", model.Venue).
		Set("state", model.State).
		Set("goals_home", model.GoalsHome).
		Set("goals_away", model.GoalsAway).
		Set("current_minute", model.CurrentMinute).
		Set("scorekeeper_id", model.ScorekeeperID).
		Set("updated_at", model.UpdatedAt).
		Where(qb.Eq("public_id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match %s: %w", item.ID, err)
	}
	return expectAffected(res, "match", item.ID)
}

func (r *MatchRepository) Delete(ctx context.Context, matchID string) error {
	query, args, err := qb.DeleteFrom("matches").
		Where(qb.Eq("public_id", matchID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete match %s: %w", matchID, err)
	}
	return expectAffected(res, "match", matchID)
}

func (r *MatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]match.Match, error) {
	return r.list(ctx, "by tournament", qb.Eq("tournament_public_id", tournamentID))
}

func (r *MatchRepository) CountByTournament(ctx context.Context, tournamentID string) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From("matches").
		Where(qb.Eq("tournament_public_id", tournamentID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count matches query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return count, nil
}

func (r *MatchRepository) ListByTeamBetween(ctx context.Context, teamID string, from, to time.Time) ([]match.Match, error) {
	return r.list(ctx, "by team",
		qb.Expr("(home_team_public_id = ? OR away_team_public_id = ?)", teamID, teamID),
		qb.Gte("scheduled_at", from),
		qb.Lt("scheduled_at", to),
	)
}

func (r *MatchRepository) ListByStates(ctx context.Context, states ...match.State) ([]match.Match, error) {
	values := make([]string, 0, len(states))
	for _, s := range states {
		values = append(values, string(s))
	}
	return r.list(ctx, "by states", qb.In("state", values))
}

func (r *MatchRepository) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]match.Match, error) {
	return r.list(ctx, "scheduled between",
		qb.Eq("state", string(match.StateScheduled)),
		qb.Gte("scheduled_at", from),
		qb.Lt("scheduled_at", to),
	)
}

func (r *MatchRepository) list(ctx context.Context, label string, conditions ...qb.Condition) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(conditions...).
		OrderBy("matchday", "scheduled_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches %s query: %w", label, err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches %s: %w", label, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func matchToInsertModel(item match.Match) matchInsertModel {
	return matchInsertModel{
		PublicID:      item.ID,
		TournamentID:  item.TournamentID,
		Matchday:      item.Matchday,
		HomeTeamID:    item.HomeTeamID,
		AwayTeamID:    item.AwayTeamID,
		ScheduledAt:   item.ScheduledAt.UTC(),
		Venue:         nullableString(item.Venue),
		State:         string(item.State),
		GoalsHome:     item.GoalsHome,
		GoalsAway:     item.GoalsAway,
		CurrentMinute: item.CurrentMinute,
		ScorekeeperID: nullableString(item.ScorekeeperID),
		UpdatedAt:     item.UpdatedAt.UTC(),
	}
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:            row.PublicID,
		TournamentID:  row.TournamentID,
		Matchday:      row.Matchday,
		HomeTeamID:    row.HomeTeamID,
		AwayTeamID:    row.AwayTeamID,
		ScheduledAt:   row.ScheduledAt.UTC(),
		Venue:         row.Venue.String,
		State:         match.State(row.State),
		GoalsHome:     nullInt64ToIntPtr(row.GoalsHome),
		GoalsAway:     nullInt64ToIntPtr(row.GoalsAway),
		CurrentMinute: row.CurrentMinute,
		ScorekeeperID: row.ScorekeeperID.String,
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}
