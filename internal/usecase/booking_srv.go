package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"seat-reservation/internal/broadcast"
	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/dto/response"
	"seat-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewBookingPayload is the event payload fanned out to admin observers when
// a guest books seats.
type NewBookingPayload struct {
	Name   string   `json:"name"`
	Phone  string   `json:"phone"`
	Seats  []string `json:"seats"`
	Status string   `json:"status"`
}

// BookingService is the transactional entry point for creating reservations
// and reading seat availability.
type BookingService interface {
	// Book validates the request, claims every requested seat and creates
	// the reservation as one atomic unit. isAdmin controls the initial
	// status: active for admin-created bookings, pending otherwise.
	Book(ctx context.Context, req *request.BookRequest, isAdmin bool) (*response.BookResponse, error)

	// CheckSeats reports whether all given seats are still free, naming the
	// conflicting ones otherwise.
	CheckSeats(ctx context.Context, req *request.CheckSeatsRequest) (*response.CheckSeatsResponse, error)

	// OccupiedSeats returns every seat owned by a pending or active
	// reservation, for the public availability map.
	OccupiedSeats(ctx context.Context) ([]entity.OccupiedSeat, error)
}

type bookingService struct {
	repo    *repository.Repository
	hub     *broadcast.Hub
	sweeper SweeperService
	config  *utils.Config
	log     *zap.Logger
}

func NewBookingService(repo *repository.Repository, hub *broadcast.Hub, sweeper SweeperService, config *utils.Config, log *zap.Logger) BookingService {
	return &bookingService{
		repo:    repo,
		hub:     hub,
		sweeper: sweeper,
		config:  config,
		log:     log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) Book(ctx context.Context, req *request.BookRequest, isAdmin bool) (*response.BookResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Book validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	// Struct tags cannot carry config-driven bounds, so length and seat
	// count limits are enforced here.
	if len(req.Name) > s.config.Booking.MaxNameLength {
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrValidation, s.config.Booking.MaxNameLength)
	}
	if len(req.Phone) > s.config.Booking.MaxPhoneLength {
		return nil, fmt.Errorf("%w: phone exceeds %d characters", ErrValidation, s.config.Booking.MaxPhoneLength)
	}
	if len(req.Seats) > s.config.Booking.MaxSeats {
		return nil, fmt.Errorf("%w: at most %d seats per reservation", ErrValidation, s.config.Booking.MaxSeats)
	}

	seats := request.ToEntityRefs(req.Seats)

	seen := make(map[string]struct{}, len(seats))
	for _, ref := range seats {
		if _, dup := seen[ref.Label()]; dup {
			return nil, fmt.Errorf("%w: duplicate seat %s", ErrValidation, ref.Label())
		}
		seen[ref.Label()] = struct{}{}
	}

	// Free seats that only look occupied because their pending owner timed
	// out must not block the booking.
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}

	token, err := utils.GenerateTicketToken()
	if err != nil {
		s.log.Error("Failed to generate ticket token", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTransient, err)
	}

	status := entity.StatusPending
	if isAdmin {
		status = entity.StatusActive
	}

	now := time.Now()
	reservation := &entity.Reservation{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Token:         token,
		Name:          req.Name,
		Phone:         req.Phone,
		Status:        status,
		BookedByAdmin: isAdmin,
	}

	if err := s.repo.Reservation.CreateWithSeats(ctx, reservation, seats); err != nil {
		var claimed *repository.SeatClaimedError
		if errors.As(err, &claimed) {
			s.log.Info("Booking rejected on seat conflict",
				zap.String("seat", claimed.Label()),
				zap.String("name", req.Name),
			)
			return nil, err
		}

		s.log.Error("Failed to create reservation",
			zap.Error(err),
			zap.String("name", req.Name),
			zap.String("phone", req.Phone),
			zap.Strings("seats", seatLabels(seats)),
		)
		return nil, fmt.Errorf("%w: create reservation: %w", ErrTransient, err)
	}

	s.log.Info("Booking created",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("name", reservation.Name),
		zap.String("phone", reservation.Phone),
		zap.Strings("seats", seatLabels(seats)),
		zap.String("status", string(status)),
		zap.Bool("admin", isAdmin),
	)

	// Guest bookings notify the dashboard; admin bookings would only notify
	// the admin about themselves.
	if !isAdmin {
		s.hub.Publish(broadcast.Event{
			Type: broadcast.EventNewBooking,
			Payload: NewBookingPayload{
				Name:   reservation.Name,
				Phone:  reservation.Phone,
				Seats:  seatLabels(seats),
				Status: string(status),
			},
		})
	}

	return &response.BookResponse{
		Token:     token,
		TicketURL: fmt.Sprintf("%s/api/ticket/%s", s.config.App.BaseURL, token),
	}, nil
}

func (s *bookingService) CheckSeats(ctx context.Context, req *request.CheckSeatsRequest) (*response.CheckSeatsResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}

	claimed, err := s.repo.Seat.FindClaimed(ctx, request.ToEntityRefs(req.Seats))
	if err != nil {
		return nil, fmt.Errorf("%w: check seats: %w", ErrTransient, err)
	}

	return &response.CheckSeatsResponse{
		Available: len(claimed) == 0,
		Conflicts: claimed,
	}, nil
}

func (s *bookingService) OccupiedSeats(ctx context.Context) ([]entity.OccupiedSeat, error) {
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}

	seats, err := s.repo.Seat.FindOccupied(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: occupied seats: %w", ErrTransient, err)
	}

	return seats, nil
}

func seatLabels(seats []entity.SeatRef) []string {
	labels := make([]string, len(seats))
	for i, ref := range seats {
		labels[i] = ref.Label()
	}
	return labels
}
