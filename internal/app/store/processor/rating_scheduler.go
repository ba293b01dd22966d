package processor

import (
	"context"

	"onlinestore/pkg/logger"

	"github.com/robfig/cron/v3"
)

// RatingsRefresher - контракт пересчёта рейтингов, реализуется service.ReviewService
type RatingsRefresher interface {
	RefreshProductRatings(ctx context.Context) error
}

// RatingScheduler периодически пересчитывает средние рейтинги товаров
// и складывает их в Redis для чтения витринами
type RatingScheduler struct {
	cron      *cron.Cron
	refresher RatingsRefresher
}

func NewRatingScheduler(refresher RatingsRefresher) *RatingScheduler {
	return &RatingScheduler{
		cron:      cron.New(),
		refresher: refresher,
	}
}

// Start запускает планировщик и сразу выполняет первый пересчёт,
// чтобы кеш рейтингов был заполнен до первого тика расписания
func (s *RatingScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting rating scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.refresher.RefreshProductRatings(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to refresh product ratings")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	if err := s.refresher.RefreshProductRatings(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed initial product ratings refresh")
	}

	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего запуска
func (s *RatingScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Rating scheduler stopped")
}

// GetEntries возвращает запланированные задачи
func (s *RatingScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
