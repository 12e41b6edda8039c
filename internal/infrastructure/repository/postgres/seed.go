package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-live/internal/domain/standing"
	"github.com/riskibarqy/league-live/internal/domain/team"
	"github.com/riskibarqy/league-live/internal/domain/tournament"
	qb "github.com/riskibarqy/league-live/internal/platform/querybuilder"
)

const seedSkipSuffix = "ON CONFLICT DO NOTHING"

// BootstrapSeed inserts reference rows that are missing. Existing rows are
// left untouched, so it is safe on every start.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, teams []team.Team, tournaments []tournament.Tournament, entries []standing.Entry) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx bootstrap seed: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range teams {
		if err := execSeed(ctx, tx, "teams", teamInsertModel{
			PublicID:     item.ID,
			Name:         item.Name,
			Abbreviation: item.Abbreviation,
		}); err != nil {
			return err
		}
	}
	for _, item := range tournaments {
		if err := execSeed(ctx, tx, "tournaments", tournamentInsertModel{
			PublicID:       item.ID,
			Name:           item.Name,
			TotalMatchdays: item.TotalMatchdays,
			Active:         item.Active,
		}); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if err := execSeed(ctx, tx, "standings", standingInsertModel{
			TournamentID: e.TournamentID,
			TeamID:       e.TeamID,
			UpdatedAt:    e.UpdatedAt.UTC(),
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap seed tx: %w", err)
	}
	return nil
}

func execSeed(ctx context.Context, tx *sqlx.Tx, table string, model any) error {
	query, args, err := qb.InsertModel(table, model, seedSkipSuffix)
	if err != nil {
		return fmt.Errorf("build seed %s query: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed %s: %w", table, err)
	}
	return nil
}
