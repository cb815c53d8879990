package usecase

import (
	"context"
	"fmt"
	"time"

	"seat-reservation/internal/data/repository"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

// SweeperService demotes stale pending reservations to expired and frees
// their seats. Read paths that expose seat availability call Sweep first;
// Run additionally sweeps on a fixed interval in the background.
type SweeperService interface {
	Sweep(ctx context.Context) (int, error)
	Run(ctx context.Context)
}

type sweeperService struct {
	reservations repository.ReservationRepository
	timeout      time.Duration
	interval     time.Duration
	log          *zap.Logger
}

func NewSweeperService(reservations repository.ReservationRepository, config *utils.Config, log *zap.Logger) SweeperService {
	return &sweeperService{
		reservations: reservations,
		timeout:      config.Booking.PendingTimeout,
		interval:     config.Booking.SweepInterval,
		log:          log.With(zap.String("service", "sweeper")),
	}
}

func (s *sweeperService) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.timeout)

	count, err := s.reservations.ExpireStale(ctx, cutoff)
	if err != nil {
		s.log.Error("Sweep failed", zap.Error(err), zap.Time("cutoff", cutoff))
		return 0, fmt.Errorf("%w: sweep stale reservations: %w", ErrTransient, err)
	}

	return count, nil
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (s *sweeperService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("Sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("pending_timeout", s.timeout),
	)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sweeper stopped")
			return
		case <-ticker.C:
			if count, err := s.Sweep(ctx); err == nil && count > 0 {
				s.log.Info("Background sweep expired reservations", zap.Int("count", count))
			}
		}
	}
}
