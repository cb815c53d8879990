package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// fakeStore is an in-memory stand-in for the seat ledger and reservation
// store. A single mutex guards every operation, giving it the same
// all-or-nothing semantics the transactional repositories provide.
type fakeStore struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*entity.Reservation
	tokens       map[string]uuid.UUID
	seats        map[entity.SeatRef]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reservations: make(map[uuid.UUID]*entity.Reservation),
		tokens:       make(map[string]uuid.UUID),
		seats:        make(map[entity.SeatRef]uuid.UUID),
	}
}

var _ repository.SeatRepository = (*fakeStore)(nil)
var _ repository.ReservationRepository = (*fakeStore)(nil)

// backdate rewrites a reservation's creation time so sweeper tests can age
// it past the pending timeout.
func (f *fakeStore) backdate(t *testing.T, id string, createdAt time.Time) {
	t.Helper()

	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("backdate: bad reservation ID %q: %v", id, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	reservation, ok := f.reservations[parsed]
	if !ok {
		t.Fatalf("backdate: unknown reservation %s", id)
	}
	reservation.CreatedAt = createdAt
}

// ---- ReservationRepository ----

func (f *fakeStore) CreateWithSeats(_ context.Context, reservation *entity.Reservation, seats []entity.SeatRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ref := range seats {
		if _, claimed := f.seats[ref]; claimed {
			return &repository.SeatClaimedError{Region: ref.Region, Number: ref.Number}
		}
	}

	stored := *reservation
	f.reservations[stored.ID] = &stored
	f.tokens[stored.Token] = stored.ID
	for _, ref := range seats {
		f.seats[ref] = stored.ID
	}
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id uuid.UUID) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reservation, ok := f.reservations[id]
	if !ok {
		return nil, nil
	}
	copied := *reservation
	return &copied, nil
}

func (f *fakeStore) FindByToken(_ context.Context, token string) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.tokens[token]
	if !ok {
		return nil, nil
	}
	copied := *f.reservations[id]
	return &copied, nil
}

func statusIn(status entity.ReservationStatus, from []entity.ReservationStatus) bool {
	for _, s := range from {
		if s == status {
			return true
		}
	}
	return false
}

func (f *fakeStore) UpdateStatusFrom(_ context.Context, id uuid.UUID, from []entity.ReservationStatus, to entity.ReservationStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reservation, ok := f.reservations[id]
	if !ok || !statusIn(reservation.Status, from) {
		return false, nil
	}
	reservation.Status = to
	reservation.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeStore) ReleaseAndUpdateStatusFrom(_ context.Context, id uuid.UUID, from []entity.ReservationStatus, to entity.ReservationStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reservation, ok := f.reservations[id]
	if !ok || !statusIn(reservation.Status, from) {
		return false, nil
	}
	reservation.Status = to
	reservation.UpdatedAt = time.Now()
	f.releaseLocked(id)
	return true, nil
}

func (f *fakeStore) releaseLocked(id uuid.UUID) {
	for ref, owner := range f.seats {
		if owner == id {
			delete(f.seats, ref)
		}
	}
}

func (f *fakeStore) ExpireStale(_ context.Context, cutoff time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for id, reservation := range f.reservations {
		if reservation.Status == entity.StatusPending && reservation.CreatedAt.Before(cutoff) {
			reservation.Status = entity.StatusExpired
			f.releaseLocked(id)
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) matchesLocked(reservation *entity.Reservation, filter repository.ListFilter) bool {
	if filter.Status != "all" && string(reservation.Status) != filter.Status {
		return false
	}
	if filter.Search == "" {
		return true
	}
	needle := strings.ToLower(filter.Search)
	if strings.Contains(strings.ToLower(reservation.Name), needle) ||
		strings.Contains(strings.ToLower(reservation.Phone), needle) {
		return true
	}
	for ref, owner := range f.seats {
		if owner == reservation.ID && strings.Contains(strings.ToLower(ref.Label()), needle) {
			return true
		}
	}
	return false
}

func statusRank(status entity.ReservationStatus) int {
	switch status {
	case entity.StatusPending:
		return 0
	case entity.StatusActive:
		return 1
	case entity.StatusExpired:
		return 2
	case entity.StatusRevoked:
		return 3
	default:
		return 4
	}
}

func (f *fakeStore) List(_ context.Context, filter repository.ListFilter) ([]*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*entity.Reservation
	for _, reservation := range f.reservations {
		if f.matchesLocked(reservation, filter) {
			copied := *reservation
			matched = append(matched, &copied)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		ri, rj := statusRank(matched[i].Status), statusRank(matched[j].Status)
		if ri != rj {
			return ri < rj
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (f *fakeStore) Count(_ context.Context, filter repository.ListFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, reservation := range f.reservations {
		if f.matchesLocked(reservation, filter) {
			count++
		}
	}
	return count, nil
}

// ---- SeatRepository ----

func (f *fakeStore) ClaimTx(_ context.Context, _ pgx.Tx, reservationID uuid.UUID, ref entity.SeatRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, claimed := f.seats[ref]; claimed {
		return &repository.SeatClaimedError{Region: ref.Region, Number: ref.Number}
	}
	f.seats[ref] = reservationID
	return nil
}

func (f *fakeStore) ReleaseByReservationTx(_ context.Context, _ pgx.Tx, reservationID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var released int64
	for ref, owner := range f.seats {
		if owner == reservationID {
			delete(f.seats, ref)
			released++
		}
	}
	return released, nil
}

func (f *fakeStore) FindOccupied(_ context.Context) ([]entity.OccupiedSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var occupied []entity.OccupiedSeat
	for ref, owner := range f.seats {
		reservation := f.reservations[owner]
		if reservation == nil || reservation.Status.Released() {
			continue
		}
		occupied = append(occupied, entity.OccupiedSeat{
			Region: ref.Region,
			Number: ref.Number,
			Status: reservation.Status,
		})
	}

	sort.Slice(occupied, func(i, j int) bool {
		if occupied[i].Region != occupied[j].Region {
			return occupied[i].Region < occupied[j].Region
		}
		return occupied[i].Number < occupied[j].Number
	})
	return occupied, nil
}

func (f *fakeStore) FindClaimed(_ context.Context, seats []entity.SeatRef) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var claimed []string
	for _, ref := range seats {
		if _, ok := f.seats[ref]; ok {
			claimed = append(claimed, ref.Label())
		}
	}
	return claimed, nil
}

func (f *fakeStore) FindByReservationID(_ context.Context, reservationID uuid.UUID) ([]entity.SeatRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var refs []entity.SeatRef
	for ref, owner := range f.seats {
		if owner == reservationID {
			refs = append(refs, ref)
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Region != refs[j].Region {
			return refs[i].Region < refs[j].Region
		}
		return refs[i].Number < refs[j].Number
	})
	return refs, nil
}
