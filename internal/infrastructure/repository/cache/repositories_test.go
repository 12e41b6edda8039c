package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/league-live/internal/domain/standing"
	"github.com/riskibarqy/league-live/internal/domain/tournament"
	"github.com/riskibarqy/league-live/internal/infrastructure/repository/memory"
	tournamentmock "github.com/riskibarqy/league-live/internal/mocks/domain/tournament"
	basecache "github.com/riskibarqy/league-live/internal/platform/cache"
	"github.com/stretchr/testify/mock"
)

func TestTournamentRepository_GetByIDLoadsOnce(t *testing.T) {
	t.Parallel()

	next := tournamentmock.NewRepository(t)
	next.On("GetByID", mock.Anything, "t-1").
		Return(tournament.Tournament{ID: "t-1", Name: "Liga"}, true, nil).
		Once()

	repo := NewTournamentRepository(next, basecache.NewStore(time.Minute))
	for range 3 {
		item, exists, err := repo.GetByID(context.Background(), "t-1")
		if err != nil || !exists || item.Name != "Liga" {
			t.Fatalf("unexpected result: item=%+v exists=%v err=%v", item, exists, err)
		}
	}
}

func TestTournamentRepository_UpdateInvalidates(t *testing.T) {
	t.Parallel()

	next := tournamentmock.NewRepository(t)
	next.On("GetByID", mock.Anything, "t-1").
		Return(tournament.Tournament{ID: "t-1", Name: "Liga"}, true, nil).
		Twice()
	next.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	repo := NewTournamentRepository(next, basecache.NewStore(time.Minute))
	ctx := context.Background()
	if _, _, err := repo.GetByID(ctx, "t-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := repo.Update(ctx, tournament.Tournament{ID: "t-1", Name: "Liga", TotalMatchdays: 10}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, _, err := repo.GetByID(ctx, "t-1"); err != nil {
		t.Fatalf("get after update: %v", err)
	}
}

func TestStandingRepository_UpsertDropsCachedTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewStandingRepository(memory.NewStandingRepository(), basecache.NewStore(time.Minute))
	if err := repo.Upsert(ctx, standing.Entry{TournamentID: "t-1", TeamID: "a"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	before, err := repo.ListByTournament(ctx, "t-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(before) != 1 || before[0].Points != 0 {
		t.Fatalf("unexpected table: %+v", before)
	}

	won := standing.Entry{TournamentID: "t-1", TeamID: "a", Played: 1, Won: 1, GoalsFor: 2, Points: 3}
	if err := repo.Upsert(ctx, won); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	after, err := repo.ListByTournament(ctx, "t-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(after) != 1 || after[0].Points != 3 {
		t.Fatalf("stale table after upsert: %+v", after)
	}
	row, exists, err := repo.Get(ctx, "t-1", "a")
	if err != nil || !exists || row.Won != 1 {
		t.Fatalf("unexpected row: %+v exists=%v err=%v", row, exists, err)
	}
}
