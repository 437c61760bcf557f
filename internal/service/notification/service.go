package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/notification"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type Service struct {
	repo   notification.Repository
	config Config

	queue  chan notification.QueueNotificationRequest
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// NewNotificationService creates a notification queue with background
// workers that batch-insert queued notifications.
func NewNotificationService(repo notification.Repository, cfg Config) *Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &Service{
		repo:   repo,
		config: cfg,
		queue:  make(chan notification.QueueNotificationRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)

	return s
}

// worker drains the queue, flushing on batch size, interval tick or shutdown.
func (s *Service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.QueueNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = newNotification(req)
		}

		if err := s.repo.CreateBatch(ctx, notifications); err != nil {
			slog.Error("Failed to batch insert notifications", "worker", id, "error", err)
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			flush()
			return
		}
	}
}

// QueueNotification queues a notification for async processing. When the
// queue is full it falls back to a direct insert rather than blocking the
// caller.
func (s *Service) QueueNotification(ctx context.Context, req notification.QueueNotificationRequest) error {
	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return s.repo.CreateBatch(ctx, []*notification.Notification{newNotification(req)})
	}
}

// ListMyNotifications returns an employee's most recent notifications.
func (s *Service) ListMyNotifications(ctx context.Context, employeeID string, limit int) ([]notification.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByEmployee(ctx, employeeID, limit)
}

// Stop flushes pending notifications and stops the workers.
func (s *Service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func newNotification(req notification.QueueNotificationRequest) *notification.Notification {
	return &notification.Notification{
		ID:         uuid.New().String(),
		EmployeeID: req.EmployeeID,
		Category:   req.Category,
		Title:      req.Title,
		Message:    req.Message,
		IsRead:     false,
		CreatedAt:  time.Now().UTC(),
	}
}
