package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ListFilter narrows and pages the admin reservation list.
type ListFilter struct {
	Status string // "all" or a concrete status
	Search string // matches name, phone, region, number or "REGION-N"
	Limit  int
	Offset int
}

// ReservationRepository owns the reservation lifecycle storage. Every
// multi-step mutation (claim-set + create, status change + release,
// expiry batch) runs inside a single transaction.
type ReservationRepository interface {
	// CreateWithSeats inserts the reservation and claims every requested
	// seat as one atomic unit. On any conflict nothing is persisted and a
	// *SeatClaimedError naming the first unavailable seat is returned.
	CreateWithSeats(ctx context.Context, reservation *entity.Reservation, seats []entity.SeatRef) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
	FindByToken(ctx context.Context, token string) (*entity.Reservation, error)

	// UpdateStatusFrom transitions the reservation to the target status only
	// when its current status is in from. It reports whether a row changed;
	// seats are untouched.
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from []entity.ReservationStatus, to entity.ReservationStatus) (bool, error)

	// ReleaseAndUpdateStatusFrom is UpdateStatusFrom plus the release of all
	// seats owned by the reservation, in one transaction. When the status
	// guard matches no row, nothing is released.
	ReleaseAndUpdateStatusFrom(ctx context.Context, id uuid.UUID, from []entity.ReservationStatus, to entity.ReservationStatus) (bool, error)

	// ExpireStale demotes every pending reservation created before cutoff to
	// expired and frees its seats, as one atomic batch. Returns the number
	// of reservations expired. Idempotent.
	ExpireStale(ctx context.Context, cutoff time.Time) (int, error)

	List(ctx context.Context, filter ListFilter) ([]*entity.Reservation, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
}

type reservationRepository struct {
	db    database.PgxIface
	seats SeatRepository
	log   *zap.Logger
}

func NewReservationRepository(db database.PgxIface, seats SeatRepository, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:    db,
		seats: seats,
		log:   log.With(zap.String("repository", "reservation")),
	}
}

// sortedSeatRefs copies the claim set into (region, number) order. Rival
// bookings over overlapping seats then lock the seat rows in the same
// sequence, so one of them conflicts instead of both deadlocking.
func sortedSeatRefs(seats []entity.SeatRef) []entity.SeatRef {
	ordered := make([]entity.SeatRef, len(seats))
	copy(ordered, seats)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Region != ordered[j].Region {
			return ordered[i].Region < ordered[j].Region
		}
		return ordered[i].Number < ordered[j].Number
	})
	return ordered
}

func (r *reservationRepository) CreateWithSeats(ctx context.Context, reservation *entity.Reservation, seats []entity.SeatRef) error {
	seats = sortedSeatRefs(seats)

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		insertQuery := `
			INSERT INTO reservations (id, token, name, phone, status, booked_by_admin, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		if _, err := tx.Exec(ctx, insertQuery,
			reservation.ID,
			reservation.Token,
			reservation.Name,
			reservation.Phone,
			reservation.Status,
			reservation.BookedByAdmin,
			reservation.CreatedAt,
			reservation.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert reservation %s: %w", reservation.ID.String(), err)
		}

		for _, ref := range seats {
			if err := r.seats.ClaimTx(ctx, tx, reservation.ID, ref); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		r.log.Warn("Failed to create reservation with seats",
			zap.Error(err),
			zap.String("reservation_id", reservation.ID.String()),
			zap.Int("seat_count", len(seats)),
		)
		return err
	}

	return nil
}

const reservationColumns = `id, token, name, phone, status, booked_by_admin, created_at, updated_at`

func (r *reservationRepository) scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var reservation entity.Reservation
	err := row.Scan(
		&reservation.ID,
		&reservation.Token,
		&reservation.Name,
		&reservation.Phone,
		&reservation.Status,
		&reservation.BookedByAdmin,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	reservation, err := r.scanReservation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find reservation by ID",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return nil, fmt.Errorf("find reservation by ID %s: %w", id.String(), err)
	}

	return reservation, nil
}

func (r *reservationRepository) FindByToken(ctx context.Context, token string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE token = $1`

	reservation, err := r.scanReservation(r.db.QueryRow(ctx, query, token))
	if err != nil {
		r.log.Error("Failed to find reservation by token", zap.Error(err))
		return nil, fmt.Errorf("find reservation by token: %w", err)
	}

	return reservation, nil
}

func statusStrings(statuses []entity.ReservationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *reservationRepository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from []entity.ReservationStatus, to entity.ReservationStatus) (bool, error) {
	query := `
		UPDATE reservations
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
	`

	result, err := r.db.Exec(ctx, query, id, to, statusStrings(from))
	if err != nil {
		r.log.Error("Failed to update reservation status",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
			zap.String("status", string(to)),
		)
		return false, fmt.Errorf("update reservation %s status to %s: %w", id.String(), string(to), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *reservationRepository) ReleaseAndUpdateStatusFrom(ctx context.Context, id uuid.UUID, from []entity.ReservationStatus, to entity.ReservationStatus) (bool, error) {
	var changed bool

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE reservations
			SET status = $2, updated_at = NOW()
			WHERE id = $1 AND status = ANY($3)
		`

		result, err := tx.Exec(ctx, query, id, to, statusStrings(from))
		if err != nil {
			return fmt.Errorf("update reservation %s status to %s: %w", id.String(), string(to), err)
		}

		if result.RowsAffected() == 0 {
			// Guard missed: wrong current status or unknown id. Nothing to release.
			return nil
		}
		changed = true

		if _, err := r.seats.ReleaseByReservationTx(ctx, tx, id); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		r.log.Error("Failed to release and update reservation",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
			zap.String("status", string(to)),
		)
		return false, err
	}

	return changed, nil
}

func (r *reservationRepository) ExpireStale(ctx context.Context, cutoff time.Time) (int, error) {
	var expired []uuid.UUID

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		expireQuery := `
			UPDATE reservations
			SET status = 'expired', updated_at = NOW()
			WHERE status = 'pending' AND created_at < $1
			RETURNING id
		`

		rows, err := tx.Query(ctx, expireQuery, cutoff)
		if err != nil {
			return fmt.Errorf("expire stale reservations: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("scan expired reservation id: %w", err)
			}
			expired = append(expired, id)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate expired reservations: %w", err)
		}

		if len(expired) == 0 {
			return nil
		}

		releaseQuery := `
			UPDATE seats
			SET reservation_id = NULL, updated_at = NOW()
			WHERE reservation_id = ANY($1)
		`

		if _, err := tx.Exec(ctx, releaseQuery, expired); err != nil {
			return fmt.Errorf("release seats of expired reservations: %w", err)
		}

		return nil
	})

	if err != nil {
		r.log.Error("Failed to expire stale reservations", zap.Error(err))
		return 0, err
	}

	if len(expired) > 0 {
		r.log.Info("Expired stale pending reservations",
			zap.Int("count", len(expired)),
			zap.Time("cutoff", cutoff),
		)
	}

	return len(expired), nil
}

// listConditions builds the WHERE clause shared by List and Count. The seat
// search goes through EXISTS to avoid duplicating reservations that own
// several matching seats.
const listConditions = `
	WHERE ($1 = 'all' OR r.status = $1)
	  AND ($2 = ''
		OR r.name ILIKE '%' || $2 || '%'
		OR r.phone ILIKE '%' || $2 || '%'
		OR EXISTS (
			SELECT 1 FROM seats s
			WHERE s.reservation_id = r.id
			  AND (s.region ILIKE '%' || $2 || '%'
				OR s.seat_number::text LIKE '%' || $2 || '%'
				OR (s.region || '-' || s.seat_number::text) ILIKE '%' || $2 || '%')
		))
`

func (r *reservationRepository) List(ctx context.Context, filter ListFilter) ([]*entity.Reservation, error) {
	// Pending first, then most recent, matching the admin dashboard ordering.
	query := `
		SELECT r.id, r.token, r.name, r.phone, r.status, r.booked_by_admin, r.created_at, r.updated_at
		FROM reservations r
	` + listConditions + `
		ORDER BY CASE r.status
			WHEN 'pending' THEN 0
			WHEN 'active' THEN 1
			WHEN 'expired' THEN 2
			WHEN 'revoked' THEN 3
			ELSE 4
		END, r.created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, filter.Status, filter.Search, filter.Limit, filter.Offset)
	if err != nil {
		r.log.Error("Failed to list reservations",
			zap.Error(err),
			zap.String("status", filter.Status),
			zap.String("search", filter.Search),
		)
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*entity.Reservation
	for rows.Next() {
		var reservation entity.Reservation
		err := rows.Scan(
			&reservation.ID,
			&reservation.Token,
			&reservation.Name,
			&reservation.Phone,
			&reservation.Status,
			&reservation.BookedByAdmin,
			&reservation.CreatedAt,
			&reservation.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, &reservation)
	}

	return reservations, nil
}

func (r *reservationRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM reservations r` + listConditions

	var count int64
	if err := r.db.QueryRow(ctx, query, filter.Status, filter.Search).Scan(&count); err != nil {
		r.log.Error("Failed to count reservations",
			zap.Error(err),
			zap.String("status", filter.Status),
			zap.String("search", filter.Search),
		)
		return 0, fmt.Errorf("count reservations: %w", err)
	}

	return count, nil
}
