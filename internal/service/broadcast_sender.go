package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"helphop/internal/config"
	"helphop/internal/domain"
	"helphop/internal/redis"
	"helphop/pkg/e"
)

// BroadcastSender drains the broadcast queue and pushes incidents to the
// rescuer channel. It owns delivery: retries and failures stay here and
// never reach the intake path.
type BroadcastSender struct {
	logger *slog.Logger
	cfg    config.BroadcastConfig
	queue  *redis.BroadcastQueue
	http   *http.Client
}

func NewBroadcastSender(logger *slog.Logger, cfg config.BroadcastConfig, q *redis.BroadcastQueue) *BroadcastSender {
	return &BroadcastSender{
		logger: logger,
		cfg:    cfg,
		queue:  q,
		http:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *BroadcastSender) Run(ctx context.Context) {
	s.logger.Info("broadcastSender STARTED", slog.String("channel_url", s.cfg.ChannelURL))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("broadcastSender STOPPED", slog.String("reason", ctx.Err().Error()))
			return
		default:
		}

		incident, err := s.queue.BRPop(ctx, 5*time.Second)
		if err != nil {
			if errors.Is(err, e.ErrQueueEmpty) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			s.logger.Error("BRPop failed", slog.Any("error", err))
			time.Sleep(500 * time.Millisecond)
			continue
		}

		s.logger.Info("sending broadcast", slog.String("incident_id", incident.ID.String()))
		s.sendWithRetry(ctx, incident)
	}
}

func (s *BroadcastSender) sendWithRetry(ctx context.Context, incident domain.Incident) {
	const maxRetries = 3

	body, err := json.Marshal(incident)
	if err != nil {
		s.logger.Error("marshal broadcast payload failed", slog.String("error", err.Error()))
		return
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			s.logger.Info("stop retries due to context cancel")
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.ChannelURL, bytes.NewReader(body))
		if err != nil {
			s.logger.Error("create broadcast request failed", slog.String("error", err.Error()))
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.http.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}

		reason := "unknown"
		if err != nil {
			reason = err.Error()
		} else if resp != nil {
			reason = resp.Status
		}

		s.logger.Warn("broadcast failed",
			slog.Int("attempt", attempt),
			slog.String("incident_id", incident.ID.String()),
			slog.String("reason", reason),
		)

		// no backoff after the final attempt, the loop should get back
		// to the queue immediately
		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}
}
