package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-live/internal/domain/tournament"
	qb "github.com/riskibarqy/league-live/internal/platform/querybuilder"
)

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) Create(ctx context.Context, item tournament.Tournament) error {
	query, args, err := qb.InsertModel("tournaments", tournamentInsertModel{
		PublicID:       item.ID,
		Name:           item.Name,
		TotalMatchdays: item.TotalMatchdays,
		Active:         item.Active,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert tournament query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert tournament %s: %w", item.ID, err)
	}
	return nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select("*").From("tournaments").
		Where(qb.Eq("public_id", tournamentID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build select tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("select tournament: %w", err)
	}

	return tournament.Tournament{
		ID:             row.PublicID,
		Name:           row.Name,
		TotalMatchdays: row.TotalMatchdays,
		Active:         row.Active,
	}, true, nil
}

func (r *TournamentRepository) Update(ctx context.Context, item tournament.Tournament) error {
	query, args, err := qb.Update("tournaments").
		Set("name", item.Name).
		Set("total_matchdays", item.TotalMatchdays).
		Set("active", item.Active).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update tournament query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update tournament %s: %w", item.ID, err)
	}
	return expectAffected(res, "tournament", item.ID)
}
