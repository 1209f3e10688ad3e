// README: Concurrency tests for booking transitions and assignment (run with -race).
package booking

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"tourbook/internal/infra"
	"tourbook/internal/types"
)

func TestConcurrentConfirmSameBooking(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewService(repo)
			b, err := svc.Create(ctx, validCreate())
			if err != nil {
				t.Fatalf("create booking: %v", err)
			}

			const attempts = 8
			var wg sync.WaitGroup
			errs := make(chan error, attempts)
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := svc.Confirm(ctx, b.ID, nil)
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			success := 0
			for err := range errs {
				if err == nil {
					success++
					continue
				}
				if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrInvalidState) {
					t.Fatalf("unexpected error: %v", err)
				}
			}
			if success != 1 {
				t.Fatalf("expected exactly 1 success, got %d", success)
			}

			got, err := svc.Get(ctx, b.ID)
			if err != nil {
				t.Fatalf("get booking: %v", err)
			}
			if got.Status != StatusConfirmed || got.StatusVersion != 1 {
				t.Fatalf("unexpected final state: %s v%d", got.Status, got.StatusVersion)
			}
		})
	}
}

func TestConcurrentStartVsCancel(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewService(repo)
			b, err := svc.Create(ctx, validCreate())
			if err != nil {
				t.Fatalf("create booking: %v", err)
			}
			if _, err := svc.Confirm(ctx, b.ID, nil); err != nil {
				t.Fatalf("confirm: %v", err)
			}

			var wg sync.WaitGroup
			errs := make(chan error, 2)
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, err := svc.Start(ctx, b.ID, nil)
				errs <- err
			}()
			go func() {
				defer wg.Done()
				_, err := svc.Cancel(ctx, b.ID, ActorCustomer, nil, "changed plans")
				errs <- err
			}()
			wg.Wait()
			close(errs)

			success := 0
			for err := range errs {
				if err == nil {
					success++
					continue
				}
				if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrInvalidState) {
					t.Fatalf("unexpected error: %v", err)
				}
			}
			if success != 1 {
				t.Fatalf("expected exactly 1 success, got %d", success)
			}

			got, err := svc.Get(ctx, b.ID)
			if err != nil {
				t.Fatalf("get booking: %v", err)
			}
			if got.Status != StatusInProgress && got.Status != StatusCancelled {
				t.Fatalf("unexpected final status: %s", got.Status)
			}
		})
	}
}

func TestConcurrentAssignSameDriver(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewService(repo)
			driverID := seedDriver(t, repo, "d_race")

			const attempts = 6
			ids := make([]types.ID, attempts)
			for i := range ids {
				b, err := svc.Create(ctx, validCreate())
				if err != nil {
					t.Fatalf("create booking: %v", err)
				}
				if _, err := svc.Confirm(ctx, b.ID, nil); err != nil {
					t.Fatalf("confirm: %v", err)
				}
				ids[i] = b.ID
			}

			var wg sync.WaitGroup
			errs := make(chan error, attempts)
			for _, id := range ids {
				wg.Add(1)
				go func(id types.ID) {
					defer wg.Done()
					_, err := svc.Assign(ctx, AssignCommand{BookingID: id, DriverID: &driverID})
					errs <- err
				}(id)
			}
			wg.Wait()
			close(errs)

			success := 0
			for err := range errs {
				if err == nil {
					success++
					continue
				}
				if !errors.Is(err, ErrResourceBusy) && !errors.Is(err, ErrConflict) {
					t.Fatalf("unexpected error: %v", err)
				}
			}
			if success != 1 {
				t.Fatalf("expected exactly 1 success, got %d", success)
			}
		})
	}
}

// testRepositories always includes the memory store; the Postgres store joins
// when TOURBOOK_TEST_DSN is set.
func testRepositories(t *testing.T) map[string]Repository {
	t.Helper()
	repos := map[string]Repository{"memory": NewMemoryStore()}
	if os.Getenv("TOURBOOK_TEST_DSN") != "" {
		repos["postgres"] = setupTestStore(t)
	}
	return repos
}

// seedDriver makes driverID resolvable for the store's foreign key.
func seedDriver(t *testing.T, repo Repository, id string) types.ID {
	t.Helper()
	if s, ok := repo.(*Store); ok {
		_, err := s.db.Exec(context.Background(),
			`INSERT INTO drivers (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, id, fmt.Sprintf("Driver %s", id))
		if err != nil {
			t.Fatalf("seed driver: %v", err)
		}
	}
	return types.ID(id)
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TOURBOOK_TEST_DSN")
	if dsn == "" {
		t.Skip("TOURBOOK_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	root, err := infra.FindRepoRoot()
	if err != nil {
		t.Fatalf("find repo root: %v", err)
	}
	if err := infra.ApplyMigrations(ctx, db, filepath.Join(root, "migrations")); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE booking_state_events, bookings, drivers, vehicles"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return NewStore(db)
}
