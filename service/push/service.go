// Package push stores Web Push subscriptions and broadcasts notifications.
package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"catalog.GO/core/logger"
	"catalog.GO/core/metrics"
	entity "catalog.GO/model/entity"
)

// ErrEndpointRequired rejects a subscription without an endpoint.
var ErrEndpointRequired = errors.New("push subscription endpoint is required")

// SubscriptionStore is implemented by the push subscription repository.
type SubscriptionStore interface {
	Save(endpoint string, keys entity.PushSubscriptionKeys) (*entity.PushSubscription, error)
	List() ([]entity.PushSubscription, error)
	DeleteByEndpoint(endpoint string) error
}

// Result summarizes a broadcast.
type Result struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Removed int `json:"removed"`
}

type Service struct {
	store       SubscriptionStore
	sender      Sender
	log         logger.Logger
	concurrency int
}

func NewService(store SubscriptionStore, sender Sender, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{store: store, sender: sender, log: log, concurrency: 8}
}

// Subscribe validates and stores a subscription.
func (s *Service) Subscribe(endpoint string, keys entity.PushSubscriptionKeys) (*entity.PushSubscription, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	sub, err := s.store.Save(endpoint, keys)
	if err != nil {
		return nil, fmt.Errorf("save push subscription: %w", err)
	}
	return sub, nil
}

// Broadcast sends payload to every subscription. Individual failures are
// counted, not returned; subscriptions the push service reports as gone
// (404, 410) are deleted.
func (s *Service) Broadcast(ctx context.Context, payload []byte) (Result, error) {
	subs, err := s.store.List()
	if err != nil {
		return Result{}, fmt.Errorf("list push subscriptions: %w", err)
	}

	var sent, failed, removed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, sub := range subs {
		g.Go(func() error {
			status, err := s.sender.Send(gctx, sub, payload)
			switch {
			case err == nil && status >= 200 && status < 300:
				atomic.AddInt64(&sent, 1)
				metrics.PushDeliveries.WithLabelValues("ok").Inc()
				return nil
			case status == http.StatusGone || status == http.StatusNotFound:
				if derr := s.store.DeleteByEndpoint(sub.Endpoint); derr == nil {
					atomic.AddInt64(&removed, 1)
				}
			}
			atomic.AddInt64(&failed, 1)
			metrics.PushDeliveries.WithLabelValues("failed").Inc()
			s.log.Warn("Push delivery failed",
				logger.String("endpoint", sub.Endpoint), logger.Int("status", status), logger.Error(err))
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Sent: int(sent), Failed: int(failed), Removed: int(removed)}
	s.log.Info("Push broadcast finished",
		logger.Int("sent", res.Sent), logger.Int("failed", res.Failed), logger.Int("removed", res.Removed))
	return res, nil
}
