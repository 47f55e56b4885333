package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-rfid-api/internal/dto"
	"github.com/noah-isme/absensi-rfid-api/pkg/jobs"
)

// ScanEventChannel is the pub/sub channel accepted scans fan out on.
const ScanEventChannel = "attendance.scans"

// ScanEventService pushes accepted scans through a worker queue onto a Redis
// pub/sub channel so live boards can react between polls. Publishing is best
// effort and never blocks or fails the scan itself.
type ScanEventService struct {
	queue  *jobs.Queue[dto.ScanEvent]
	client *redis.Client
	logger *zap.Logger
}

// NewScanEventService constructs the fan-out service. A nil Redis client
// disables publishing without changing the call sites.
func NewScanEventService(client *redis.Client, logger *zap.Logger) *ScanEventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ScanEventService{client: client, logger: logger}
	s.queue = jobs.New[dto.ScanEvent]("scan-events", s.handle, jobs.Config{
		Workers:    2,
		BufferSize: 64,
		MaxRetries: 3,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers.
func (s *ScanEventService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *ScanEventService) Stop() {
	s.queue.Stop()
}

// Publish enqueues an event for asynchronous delivery.
func (s *ScanEventService) Publish(event dto.ScanEvent) {
	if s == nil || s.client == nil {
		return
	}
	if err := s.queue.Enqueue(event); err != nil {
		s.logger.Warn("failed to enqueue scan event", zap.Error(err))
	}
}

func (s *ScanEventService) handle(ctx context.Context, event dto.ScanEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal scan event: %w", err)
	}
	if err := s.client.Publish(ctx, ScanEventChannel, body).Err(); err != nil {
		return fmt.Errorf("publish scan event: %w", err)
	}
	return nil
}
