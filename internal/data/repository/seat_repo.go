package repository

import (
	"context"
	"fmt"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SeatRepository is the seat ledger. It enforces the uniqueness invariant:
// at most one pending/active reservation owns a given (region, seat_number)
// at any instant. Seat rows are created lazily on first claim, never deleted.
type SeatRepository interface {
	// ClaimTx claims one seat for a reservation inside an open transaction.
	// The guarded UPDATE serializes rival claims on the same row; when the
	// seat is already owned a *SeatClaimedError is returned and the caller
	// must roll back.
	ClaimTx(ctx context.Context, tx pgx.Tx, reservationID uuid.UUID, ref entity.SeatRef) error

	// ReleaseByReservationTx frees every seat owned by the reservation.
	// Idempotent: releasing an already-free set affects zero rows.
	ReleaseByReservationTx(ctx context.Context, tx pgx.Tx, reservationID uuid.UUID) (int64, error)

	// FindOccupied returns seats currently owned by a pending or active
	// reservation together with the owner's status.
	FindOccupied(ctx context.Context) ([]entity.OccupiedSeat, error)

	// FindClaimed returns the labels of the given seats that are already
	// claimed, in the order requested.
	FindClaimed(ctx context.Context, seats []entity.SeatRef) ([]string, error)

	// FindByReservationID returns the seats owned by a reservation, ordered
	// by region then number.
	FindByReservationID(ctx context.Context, reservationID uuid.UUID) ([]entity.SeatRef, error)
}

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

func (r *seatRepository) ClaimTx(ctx context.Context, tx pgx.Tx, reservationID uuid.UUID, ref entity.SeatRef) error {
	// Seat rows exist only once referenced; the unique (region, seat_number)
	// constraint makes the insert a no-op for a known seat.
	insertQuery := `
		INSERT INTO seats (id, region, seat_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (region, seat_number) DO NOTHING
	`

	if _, err := tx.Exec(ctx, insertQuery, uuid.New(), ref.Region, ref.Number, time.Now()); err != nil {
		r.log.Error("Failed to ensure seat row",
			zap.Error(err),
			zap.String("seat", ref.Label()),
		)
		return fmt.Errorf("ensure seat %s: %w", ref.Label(), err)
	}

	// The row lock taken here serializes concurrent claims on the same seat;
	// the loser observes reservation_id already set and gets zero rows.
	claimQuery := `
		UPDATE seats
		SET reservation_id = $1, updated_at = NOW()
		WHERE region = $2 AND seat_number = $3 AND reservation_id IS NULL
	`

	result, err := tx.Exec(ctx, claimQuery, reservationID, ref.Region, ref.Number)
	if err != nil {
		r.log.Error("Failed to claim seat",
			zap.Error(err),
			zap.String("seat", ref.Label()),
			zap.String("reservation_id", reservationID.String()),
		)
		return fmt.Errorf("claim seat %s: %w", ref.Label(), err)
	}

	if result.RowsAffected() == 0 {
		return &SeatClaimedError{Region: ref.Region, Number: ref.Number}
	}

	return nil
}

func (r *seatRepository) ReleaseByReservationTx(ctx context.Context, tx pgx.Tx, reservationID uuid.UUID) (int64, error) {
	query := `
		UPDATE seats
		SET reservation_id = NULL, updated_at = NOW()
		WHERE reservation_id = $1
	`

	result, err := tx.Exec(ctx, query, reservationID)
	if err != nil {
		r.log.Error("Failed to release seats",
			zap.Error(err),
			zap.String("reservation_id", reservationID.String()),
		)
		return 0, fmt.Errorf("release seats of reservation %s: %w", reservationID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *seatRepository) FindOccupied(ctx context.Context) ([]entity.OccupiedSeat, error) {
	query := `
		SELECT s.region, s.seat_number, t.status
		FROM seats s
		JOIN reservations t ON t.id = s.reservation_id
		WHERE t.status IN ('pending', 'active')
		ORDER BY s.region, s.seat_number
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find occupied seats", zap.Error(err))
		return nil, fmt.Errorf("find occupied seats: %w", err)
	}
	defer rows.Close()

	var seats []entity.OccupiedSeat
	for rows.Next() {
		var seat entity.OccupiedSeat
		if err := rows.Scan(&seat.Region, &seat.Number, &seat.Status); err != nil {
			r.log.Error("Failed to scan occupied seat row", zap.Error(err))
			return nil, fmt.Errorf("scan occupied seat row: %w", err)
		}
		seats = append(seats, seat)
	}

	return seats, nil
}

func (r *seatRepository) FindClaimed(ctx context.Context, seats []entity.SeatRef) ([]string, error) {
	query := `
		SELECT 1
		FROM seats s
		JOIN reservations t ON t.id = s.reservation_id
		WHERE s.region = $1 AND s.seat_number = $2
		  AND t.status IN ('pending', 'active')
	`

	var claimed []string
	for _, ref := range seats {
		var one int
		err := r.db.QueryRow(ctx, query, ref.Region, ref.Number).Scan(&one)
		if err == pgx.ErrNoRows {
			continue
		}
		if err != nil {
			r.log.Error("Failed to check seat claim",
				zap.Error(err),
				zap.String("seat", ref.Label()),
			)
			return nil, fmt.Errorf("check seat %s: %w", ref.Label(), err)
		}
		claimed = append(claimed, ref.Label())
	}

	return claimed, nil
}

func (r *seatRepository) FindByReservationID(ctx context.Context, reservationID uuid.UUID) ([]entity.SeatRef, error) {
	query := `
		SELECT region, seat_number
		FROM seats
		WHERE reservation_id = $1
		ORDER BY region, seat_number
	`

	rows, err := r.db.Query(ctx, query, reservationID)
	if err != nil {
		r.log.Error("Failed to find seats by reservation ID",
			zap.Error(err),
			zap.String("reservation_id", reservationID.String()),
		)
		return nil, fmt.Errorf("find seats by reservation ID %s: %w", reservationID.String(), err)
	}
	defer rows.Close()

	var seats []entity.SeatRef
	for rows.Next() {
		var ref entity.SeatRef
		if err := rows.Scan(&ref.Region, &ref.Number); err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		seats = append(seats, ref)
	}

	return seats, nil
}
