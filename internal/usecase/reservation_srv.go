package usecase

import (
	"context"
	"fmt"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/dto/response"
	"seat-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReservationService owns the reservation lifecycle: the pending → active /
// expired / revoked state machine and the admin views over it.
type ReservationService interface {
	// Approve moves a pending reservation to active. Seats stay claimed.
	Approve(ctx context.Context, id string) error

	// Reject moves a pending reservation to revoked and frees its seats.
	Reject(ctx context.Context, id string) error

	// Revoke moves an active (or, for robustness, still-pending) reservation
	// to revoked and frees its seats.
	Revoke(ctx context.Context, id string) error

	// Lookup resolves a reservation by admin UUID or public ticket token.
	Lookup(ctx context.Context, idOrToken string) (*response.ReservationResponse, error)

	// List returns the admin dashboard page: filtered, searched, pending
	// first. Stale pending reservations are swept before the read.
	List(ctx context.Context, req *request.ListReservationsRequest) (*response.PaginatedResponse[response.ReservationResponse], error)
}

type reservationService struct {
	repo    *repository.Repository
	sweeper SweeperService
	config  *utils.Config
	log     *zap.Logger
}

func NewReservationService(repo *repository.Repository, sweeper SweeperService, config *utils.Config, log *zap.Logger) ReservationService {
	return &reservationService{
		repo:    repo,
		sweeper: sweeper,
		config:  config,
		log:     log.With(zap.String("service", "reservation")),
	}
}

func (s *reservationService) Approve(ctx context.Context, id string) error {
	reservationID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid reservation ID %s", ErrValidation, id)
	}

	changed, err := s.repo.Reservation.UpdateStatusFrom(ctx, reservationID,
		[]entity.ReservationStatus{entity.StatusPending}, entity.StatusActive)
	if err != nil {
		return fmt.Errorf("%w: approve reservation: %w", ErrTransient, err)
	}

	if !changed {
		return s.classifyMissedGuard(ctx, reservationID)
	}

	s.log.Info("Reservation approved", zap.String("reservation_id", id))
	return nil
}

func (s *reservationService) Reject(ctx context.Context, id string) error {
	return s.revokeFrom(ctx, id, "rejected",
		[]entity.ReservationStatus{entity.StatusPending})
}

func (s *reservationService) Revoke(ctx context.Context, id string) error {
	return s.revokeFrom(ctx, id, "revoked",
		[]entity.ReservationStatus{entity.StatusActive, entity.StatusPending})
}

// revokeFrom transitions to revoked from any of the allowed statuses and
// releases the seats, atomically.
func (s *reservationService) revokeFrom(ctx context.Context, id, action string, from []entity.ReservationStatus) error {
	reservationID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid reservation ID %s", ErrValidation, id)
	}

	// Captured before release for the audit log only.
	seats, err := s.repo.Seat.FindByReservationID(ctx, reservationID)
	if err != nil {
		return fmt.Errorf("%w: load reservation seats: %w", ErrTransient, err)
	}

	changed, err := s.repo.Reservation.ReleaseAndUpdateStatusFrom(ctx, reservationID, from, entity.StatusRevoked)
	if err != nil {
		return fmt.Errorf("%w: %s reservation: %w", ErrTransient, action, err)
	}

	if !changed {
		return s.classifyMissedGuard(ctx, reservationID)
	}

	s.log.Info("Reservation "+action,
		zap.String("reservation_id", id),
		zap.Strings("seats", seatLabels(seats)),
	)
	return nil
}

// classifyMissedGuard distinguishes an unknown reservation from one in a
// status the guard does not allow.
func (s *reservationService) classifyMissedGuard(ctx context.Context, id uuid.UUID) error {
	reservation, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: load reservation: %w", ErrTransient, err)
	}
	if reservation == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id.String())
	}
	return fmt.Errorf("%w: reservation is %s", ErrInvalidState, reservation.Status)
}

func (s *reservationService) Lookup(ctx context.Context, idOrToken string) (*response.ReservationResponse, error) {
	var reservation *entity.Reservation

	// Ticket tokens are 32 hex chars, a form uuid.Parse also accepts, so only
	// canonical hyphenated UUIDs take the ID path.
	if reservationID, err := uuid.Parse(idOrToken); err == nil && len(idOrToken) == 36 {
		reservation, err = s.repo.Reservation.FindByID(ctx, reservationID)
		if err != nil {
			return nil, fmt.Errorf("%w: lookup reservation: %w", ErrTransient, err)
		}
	} else {
		reservation, err = s.repo.Reservation.FindByToken(ctx, idOrToken)
		if err != nil {
			return nil, fmt.Errorf("%w: lookup reservation: %w", ErrTransient, err)
		}
	}

	if reservation == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrToken)
	}

	seats, err := s.repo.Seat.FindByReservationID(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: load reservation seats: %w", ErrTransient, err)
	}

	resp := response.ReservationToResponse(reservation, seats, s.config.Booking.PendingTimeout)
	return &resp, nil
}

func (s *reservationService) List(ctx context.Context, req *request.ListReservationsRequest) (*response.PaginatedResponse[response.ReservationResponse], error) {
	if req.Status == "" {
		req.Status = "all"
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = 20
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}

	filter := repository.ListFilter{
		Status: req.Status,
		Search: req.Search,
		Limit:  req.Limit(),
		Offset: req.Offset(),
	}

	reservations, err := s.repo.Reservation.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list reservations: %w", ErrTransient, err)
	}

	total, err := s.repo.Reservation.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: count reservations: %w", ErrTransient, err)
	}

	items := make([]response.ReservationResponse, len(reservations))
	for i, reservation := range reservations {
		seats, err := s.repo.Seat.FindByReservationID(ctx, reservation.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: load reservation seats: %w", ErrTransient, err)
		}
		items[i] = response.ReservationToResponse(reservation, seats, s.config.Booking.PendingTimeout)
	}

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}
