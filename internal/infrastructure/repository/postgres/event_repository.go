package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	qb "github.com/riskibarqy/league-live/internal/platform/querybuilder"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, item matchevent.Event) error {
	query, args, err := qb.InsertModel("match_events", matchEventInsertModel{
		PublicID:          item.ID,
		MatchID:           item.MatchID,
		EventType:         string(item.Type),
		Minute:            item.Minute,
		TeamID:            item.TeamID,
		PlayerID:          nullableString(item.PlayerID),
		AssistingPlayerID: nullableString(item.AssistingPlayerID),
		Note:              nullableString(item.Note),
		CreatedAt:         item.CreatedAt.UTC(),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert match event query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert match event %s: duplicate id: %w", item.ID, err)
		}
		return fmt.Errorf("insert match event %s: %w", item.ID, err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, eventID string) (matchevent.Event, bool, error) {
	query, args, err := qb.Select("*").From("match_events").
		Where(qb.Eq("public_id", eventID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return matchevent.Event{}, false, fmt.Errorf("build select match event query: %w", err)
	}

	var row matchEventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchevent.Event{}, false, nil
		}
		return matchevent.Event{}, false, fmt.Errorf("select match event: %w", err)
	}
	return eventFromRow(row), true, nil
}

func (r *EventRepository) Delete(ctx context.Context, eventID string) error {
	query, args, err := qb.DeleteFrom("match_events").
		Where(qb.Eq("public_id", eventID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match event query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete match event %s: %w", eventID, err)
	}
	return expectAffected(res, "match event", eventID)
}

func (r *EventRepository) ListByMatch(ctx context.Context, matchID string) ([]matchevent.Event, error) {
	return r.list(ctx, "by match", qb.Eq("match_public_id", matchID))
}

func (r *EventRepository) CountByMatch(ctx context.Context, matchID string) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From("match_events").
		Where(qb.Eq("match_public_id", matchID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count match events query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count match events: %w", err)
	}
	return count, nil
}

func (r *EventRepository) ListByMatches(ctx context.Context, matchIDs []string, types ...matchevent.Type) ([]matchevent.Event, error) {
	if len(matchIDs) == 0 {
		return []matchevent.Event{}, nil
	}

	conditions := []qb.Condition{qb.In("match_public_id", matchIDs)}
	if len(types) > 0 {
		values := make([]string, 0, len(types))
		for _, t := range types {
			values = append(values, string(t))
		}
		conditions = append(conditions, qb.In("event_type", values))
	}
	return r.list(ctx, "by matches", conditions...)
}

func (r *EventRepository) list(ctx context.Context, label string, conditions ...qb.Condition) ([]matchevent.Event, error) {
	query, args, err := qb.Select("*").From("match_events").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match events %s query: %w", label, err)
	}

	var rows []matchEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select match events %s: %w", label, err)
	}

	out := make([]matchevent.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, eventFromRow(row))
	}
	return out, nil
}

func eventFromRow(row matchEventTableModel) matchevent.Event {
	return matchevent.Event{
		ID:                row.PublicID,
		MatchID:           row.MatchID,
		Type:              matchevent.Type(row.EventType),
		Minute:            row.Minute,
		TeamID:            row.TeamID,
		PlayerID:          row.PlayerID.String,
		AssistingPlayerID: row.AssistingPlayerID.String,
		Note:              row.Note.String,
		CreatedAt:         row.CreatedAt.UTC(),
	}
}
