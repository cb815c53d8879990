package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/dto/request"

	"github.com/google/uuid"
)

// mustBook creates a reservation and returns its ID and token.
func mustBook(t *testing.T, service *Service, isAdmin bool, seats ...request.SeatRef) (string, string) {
	t.Helper()

	resp, err := service.Booking.Book(context.Background(), bookReq("Guest", "0812000000", seats...), isAdmin)
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	found, err := service.Reservation.Lookup(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	return found.ID, resp.Token
}

func TestApprove(t *testing.T) {
	_, _, service := newTestEnv(t)
	ctx := context.Background()

	id, token := mustBook(t, service, false, request.SeatRef{Region: "WLA", Number: 1})

	if err := service.Reservation.Approve(ctx, id); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	found, err := service.Reservation.Lookup(ctx, token)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if found.Status != entity.StatusActive {
		t.Errorf("Status = %q, want active", found.Status)
	}
	if len(found.Seats) != 1 {
		t.Errorf("Seats = %v, approval must not release seats", found.Seats)
	}

	// A second approve misses the pending guard.
	err = service.Reservation.Approve(ctx, id)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Approve() error = %v, want ErrInvalidState", err)
	}
}

func TestApproveUnknownReservation(t *testing.T) {
	_, _, service := newTestEnv(t)
	ctx := context.Background()

	err := service.Reservation.Approve(ctx, uuid.NewString())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Approve() error = %v, want ErrNotFound", err)
	}

	err = service.Reservation.Approve(ctx, "not-a-uuid")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Approve() error = %v, want ErrValidation", err)
	}
}

func TestRejectReleasesSeats(t *testing.T) {
	_, _, service := newTestEnv(t)
	ctx := context.Background()

	id, token := mustBook(t, service, false,
		request.SeatRef{Region: "WLA", Number: 1},
		request.SeatRef{Region: "WLA", Number: 2},
	)

	if err := service.Reservation.Reject(ctx, id); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	found, err := service.Reservation.Lookup(ctx, token)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if found.Status != entity.StatusRevoked {
		t.Errorf("Status = %q, want revoked", found.Status)
	}

	occupied, err := service.Booking.OccupiedSeats(ctx)
	if err != nil {
		t.Fatalf("OccupiedSeats() error = %v", err)
	}
	if len(occupied) != 0 {
		t.Errorf("occupied = %d seats after reject, want 0", len(occupied))
	}

	// Seats are immediately bookable again.
	if _, err := service.Booking.Book(ctx, bookReq("Next", "0813000000",
		request.SeatRef{Region: "WLA", Number: 1},
	), false); err != nil {
		t.Errorf("rebooking released seat failed: %v", err)
	}
}

func TestRejectRequiresPending(t *testing.T) {
	_, _, service := newTestEnv(t)
	ctx := context.Background()

	id, _ := mustBook(t, service, false, request.SeatRef{Region: "WLA", Number: 1})
	if err := service.Reservation.Approve(ctx, id); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	err := service.Reservation.Reject(ctx, id)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("Reject() on active reservation error = %v, want ErrInvalidState", err)
	}

	// The failed reject must not have touched the seats.
	occupied, err := service.Booking.OccupiedSeats(ctx)
	if err != nil {
		t.Fatalf("OccupiedSeats() error = %v", err)
	}
	if len(occupied) != 1 {
		t.Errorf("occupied = %d seats, want 1", len(occupied))
	}
}

func TestRevoke(t *testing.T) {
	_, _, service := newTestEnv(t)
	ctx := context.Background()

	// Revoke works on active reservations.
	id, token := mustBook(t, service, false, request.SeatRef{Region: "WLA", Number: 1})
	if err := service.Reservation.Approve(ctx, id); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if err := service.Reservation.Revoke(ctx, id); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	found, err := service.Reservation.Lookup(ctx, token)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if found.Status != entity.StatusRevoked {
		t.Errorf("Status = %q, want revoked", found.Status)
	}

	// And on still-pending ones.
	pendingID, _ := mustBook(t, service, false, request.SeatRef{Region: "WLA", Number: 2})
	if err := service.Reservation.Revoke(ctx, pendingID); err != nil {
		t.Fatalf("Revoke() on pending reservation error = %v", err)
	}

	// Terminal statuses stay terminal.
	err = service.Reservation.Revoke(ctx, id)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Revoke() error = %v, want ErrInvalidState", err)
	}

	occupied, err := service.Booking.OccupiedSeats(ctx)
	if err != nil {
		t.Fatalf("OccupiedSeats() error = %v", err)
	}
	if len(occupied) != 0 {
		t.Errorf("occupied = %d seats after revokes, want 0", len(occupied))
	}
}

func TestLookupRoutesTokenAndID(t *testing.T) {
	_, _, service := newTestEnv(t)
	ctx := context.Background()

	id, token := mustBook(t, service, false, request.SeatRef{Region: "WLA", Number: 1})

	// The 32-hex token happens to be parseable as a hyphenless UUID; it must
	// still resolve through the token index.
	if _, err := uuid.Parse(token); err != nil {
		t.Fatalf("token %q not in the uuid-parseable hex form the guard exists for", token)
	}

	byToken, err := service.Reservation.Lookup(ctx, token)
	if err != nil {
		t.Fatalf("Lookup(token) error = %v", err)
	}
	if byToken.ID != id {
		t.Errorf("Lookup(token).ID = %s, want %s", byToken.ID, id)
	}

	byID, err := service.Reservation.Lookup(ctx, id)
	if err != nil {
		t.Fatalf("Lookup(id) error = %v", err)
	}
	if byID.Token != token {
		t.Errorf("Lookup(id).Token = %s, want %s", byID.Token, token)
	}
}

func TestLookupNotFound(t *testing.T) {
	_, _, service := newTestEnv(t)
	ctx := context.Background()

	_, err := service.Reservation.Lookup(ctx, uuid.NewString())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(uuid) error = %v, want ErrNotFound", err)
	}

	_, err = service.Reservation.Lookup(ctx, "deadbeefdeadbeefdeadbeefdeadbeef")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(token) error = %v, want ErrNotFound", err)
	}
}

func TestSweepExpiresStalePending(t *testing.T) {
	store, _, service := newTestEnv(t)
	ctx := context.Background()

	staleID, staleToken := mustBook(t, service, false, request.SeatRef{Region: "WLA", Number: 1})
	_, freshToken := mustBook(t, service, false, request.SeatRef{Region: "WLA", Number: 2})

	// Approved reservations never expire, no matter how old.
	activeID, activeToken := mustBook(t, service, false, request.SeatRef{Region: "WLA", Number: 3})
	if err := service.Reservation.Approve(ctx, activeID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	store.backdate(t, staleID, time.Now().Add(-time.Hour))
	store.backdate(t, activeID, time.Now().Add(-time.Hour))

	count, err := service.Sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Sweep() count = %d, want 1", count)
	}

	stale, err := service.Reservation.Lookup(ctx, staleToken)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if stale.Status != entity.StatusExpired {
		t.Errorf("stale status = %q, want expired", stale.Status)
	}
	if len(stale.Seats) != 0 {
		t.Errorf("stale seats = %v, want released", stale.Seats)
	}

	fresh, err := service.Reservation.Lookup(ctx, freshToken)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if fresh.Status != entity.StatusPending {
		t.Errorf("fresh status = %q, want pending", fresh.Status)
	}

	active, err := service.Reservation.Lookup(ctx, activeToken)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if active.Status != entity.StatusActive {
		t.Errorf("active status = %q, want active", active.Status)
	}

	// Sweeping again finds nothing new.
	count, err = service.Sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("second Sweep() error = %v", err)
	}
	if count != 0 {
		t.Errorf("second Sweep() count = %d, want 0", count)
	}
}

func TestExpiredSeatIsBookableAgain(t *testing.T) {
	store, _, service := newTestEnv(t)
	ctx := context.Background()

	staleID, _ := mustBook(t, service, false, request.SeatRef{Region: "WLA", Number: 1})
	store.backdate(t, staleID, time.Now().Add(-time.Hour))

	// Book sweeps before claiming, so no explicit Sweep call is needed.
	if _, err := service.Booking.Book(ctx, bookReq("Next", "0813000000",
		request.SeatRef{Region: "WLA", Number: 1},
	), false); err != nil {
		t.Fatalf("rebooking expired seat failed: %v", err)
	}
}

func TestApprovingExpiredReservationFails(t *testing.T) {
	store, _, service := newTestEnv(t)
	ctx := context.Background()

	staleID, _ := mustBook(t, service, false, request.SeatRef{Region: "WLA", Number: 1})
	store.backdate(t, staleID, time.Now().Add(-time.Hour))

	if _, err := service.Sweeper.Sweep(ctx); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	err := service.Reservation.Approve(ctx, staleID)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("Approve() on expired reservation error = %v, want ErrInvalidState", err)
	}
}

func TestList(t *testing.T) {
	_, _, service := newTestEnv(t)
	ctx := context.Background()

	aliceID, _ := mustBookNamed(t, service, "Alice", "0811", false, request.SeatRef{Region: "WLA", Number: 1})
	mustBookNamed(t, service, "Bob", "0812", false, request.SeatRef{Region: "WLA", Number: 2})
	mustBookNamed(t, service, "Carol", "0813", true, request.SeatRef{Region: "VIP", Number: 1})

	if err := service.Reservation.Approve(ctx, aliceID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	page, err := service.Reservation.List(ctx, &request.ListReservationsRequest{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Pagination.Total != 3 {
		t.Errorf("total = %d, want 3", page.Pagination.Total)
	}
	if len(page.Data) != 3 {
		t.Fatalf("data = %d items, want 3", len(page.Data))
	}
	// Pending comes first on the dashboard.
	if page.Data[0].Status != entity.StatusPending {
		t.Errorf("first item status = %q, want pending", page.Data[0].Status)
	}

	pending, err := service.Reservation.List(ctx, &request.ListReservationsRequest{Status: "pending"})
	if err != nil {
		t.Fatalf("List(pending) error = %v", err)
	}
	if pending.Pagination.Total != 1 || pending.Data[0].Name != "Bob" {
		t.Errorf("pending list total = %d, want Bob only", pending.Pagination.Total)
	}

	search, err := service.Reservation.List(ctx, &request.ListReservationsRequest{Search: "alice"})
	if err != nil {
		t.Fatalf("List(search) error = %v", err)
	}
	if search.Pagination.Total != 1 || search.Data[0].Name != "Alice" {
		t.Errorf("search list total = %d, want Alice only", search.Pagination.Total)
	}

	bySeat, err := service.Reservation.List(ctx, &request.ListReservationsRequest{Search: "vip-1"})
	if err != nil {
		t.Fatalf("List(seat search) error = %v", err)
	}
	if bySeat.Pagination.Total != 1 || bySeat.Data[0].Name != "Carol" {
		t.Errorf("seat search total = %d, want Carol only", bySeat.Pagination.Total)
	}

	_, err = service.Reservation.List(ctx, &request.ListReservationsRequest{Status: "bogus"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("List(bogus status) error = %v, want ErrValidation", err)
	}
}

func mustBookNamed(t *testing.T, service *Service, name, phone string, isAdmin bool, seats ...request.SeatRef) (string, string) {
	t.Helper()

	resp, err := service.Booking.Book(context.Background(), bookReq(name, phone, seats...), isAdmin)
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	found, err := service.Reservation.Lookup(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	return found.ID, resp.Token
}
