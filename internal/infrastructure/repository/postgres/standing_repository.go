package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-live/internal/domain/standing"
	qb "github.com/riskibarqy/league-live/internal/platform/querybuilder"
)

const standingUpsertSuffix = `ON CONFLICT (tournament_public_id, team_public_id)
DO UPDATE SET
    played = EXCLUDED.played,
    won = EXCLUDED.won,
    drawn = EXCLUDED.drawn,
    lost = EXCLUDED.lost,
    goals_for = EXCLUDED.goals_for,
    goals_against = EXCLUDED.goals_against,
    points = EXCLUDED.points,
    updated_at = EXCLUDED.updated_at`

type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) Upsert(ctx context.Context, entries ...standing.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, e := range entries {
		query, args, err := qb.InsertModel("standings", standingInsertModel{
			TournamentID: e.TournamentID,
			TeamID:       e.TeamID,
			Played:       e.Played,
			Won:          e.Won,
			Drawn:        e.Drawn,
			Lost:         e.Lost,
			GoalsFor:     e.GoalsFor,
			GoalsAgainst: e.GoalsAgainst,
			Points:       e.Points,
			UpdatedAt:    e.UpdatedAt.UTC(),
		}, standingUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert standing query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert standing tournament=%s team=%s: %w", e.TournamentID, e.TeamID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert standings tx: %w", err)
	}
	return nil
}

func (r *StandingRepository) Get(ctx context.Context, tournamentID, teamID string) (standing.Entry, bool, error) {
	query, args, err := qb.Select("*").From("standings").
		Where(
			qb.Eq("tournament_public_id", tournamentID),
			qb.Eq("team_public_id", teamID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return standing.Entry{}, false, fmt.Errorf("build select standing query: %w", err)
	}

	var row standingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return standing.Entry{}, false, nil
		}
		return standing.Entry{}, false, fmt.Errorf("select standing: %w", err)
	}
	return standingFromRow(row), true, nil
}

func (r *StandingRepository) ListByTournament(ctx context.Context, tournamentID string) ([]standing.Entry, error) {
	query, args, err := qb.Select("*").From("standings").
		Where(qb.Eq("tournament_public_id", tournamentID)).
		OrderBy("team_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list standings query: %w", err)
	}

	var rows []standingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}

	out := make([]standing.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, standingFromRow(row))
	}
	return out, nil
}

func standingFromRow(row standingTableModel) standing.Entry {
	return standing.Entry{
		TournamentID: row.TournamentID,
		TeamID:       row.TeamID,
		Played:       row.Played,
		Won:          row.Won,
		Drawn:        row.Drawn,
		Lost:         row.Lost,
		GoalsFor:     row.GoalsFor,
		GoalsAgainst: row.GoalsAgainst,
		Points:       row.Points,
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}
