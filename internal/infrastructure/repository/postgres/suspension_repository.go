package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-live/internal/domain/suspension"
	qb "github.com/riskibarqy/league-live/internal/platform/querybuilder"
)

// suspensions_active_player_uidx is a partial unique index on player_id
// where active, so a conflicting insert is skipped instead of stacked.
const suspensionCreateSuffix = `ON CONFLICT (player_id) WHERE active DO NOTHING`

type SuspensionRepository struct {
	db *sqlx.DB
}

func NewSuspensionRepository(db *sqlx.DB) *SuspensionRepository {
	return &SuspensionRepository{db: db}
}

func (r *SuspensionRepository) CreateIfNoneActive(ctx context.Context, item suspension.Suspension) (bool, error) {
	query, args, err := qb.InsertModel("suspensions", suspensionInsertModel{
		PublicID:          item.ID,
		PlayerID:          item.PlayerID,
		TeamID:            item.TeamID,
		Reason:            item.Reason,
		MatchesOwed:       item.MatchesOwed,
		MatchesServed:     item.MatchesServed,
		Active:            item.Active,
		StartDate:         item.StartDate.UTC(),
		EndDate:           item.EndDate,
		OriginMatchID:     nullableString(item.OriginMatchID),
		LastServedMatchID: nullableString(item.LastServedMatchID),
	}, suspensionCreateSuffix)
	if err != nil {
		return false, fmt.Errorf("build insert suspension query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert suspension %s: %w", item.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for suspension %s: %w", item.ID, err)
	}
	return n == 1, nil
}

func (r *SuspensionRepository) Update(ctx context.Context, item suspension.Suspension) error {
	query, args, err := qb.Update("suspensions").
		Set("matches_served", item.MatchesServed).
		Set("active", item.Active).
		Set("end_date", item.EndDate).
		Set("last_served_match_public_id", nullableString(item.LastServedMatchID)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update suspension query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update suspension %s: %w", item.ID, err)
	}
	return expectAffected(res, "suspension", item.ID)
}

func (r *SuspensionRepository) ListActiveByPlayer(ctx context.Context, playerID string) ([]suspension.Suspension, error) {
	return r.listActive(ctx, "by player", qb.Eq("player_id", playerID))
}

func (r *SuspensionRepository) ListActiveByTeams(ctx context.Context, teamIDs []string) ([]suspension.Suspension, error) {
	if len(teamIDs) == 0 {
		return []suspension.Suspension{}, nil
	}
	return r.listActive(ctx, "by teams", qb.In("team_public_id", teamIDs))
}

func (r *SuspensionRepository) listActive(ctx context.Context, label string, condition qb.Condition) ([]suspension.Suspension, error) {
	query, args, err := qb.Select("*").From("suspensions").
		Where(condition, qb.Eq("active", true)).
		OrderBy("start_date", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select active suspensions %s query: %w", label, err)
	}

	var rows []suspensionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select active suspensions %s: %w", label, err)
	}

	out := make([]suspension.Suspension, 0, len(rows))
	for _, row := range rows {
		out = append(out, suspensionFromRow(row))
	}
	return out, nil
}

func suspensionFromRow(row suspensionTableModel) suspension.Suspension {
	return suspension.Suspension{
		ID:                row.PublicID,
		PlayerID:          row.PlayerID,
		TeamID:            row.TeamID,
		Reason:            row.Reason,
		MatchesOwed:       row.MatchesOwed,
		MatchesServed:     row.MatchesServed,
		Active:            row.Active,
		StartDate:         row.StartDate.UTC(),
		EndDate:           nullTimeToTimePtr(row.EndDate),
		OriginMatchID:     row.OriginMatchID.String,
		LastServedMatchID: row.LastServedMatchID.String,
	}
}
