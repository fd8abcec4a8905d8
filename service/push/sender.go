package push

import (
	"context"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	entity "catalog.GO/model/entity"
)

// Sender delivers one payload to one subscription and reports the push
// service's HTTP status.
type Sender interface {
	Send(ctx context.Context, sub entity.PushSubscription, payload []byte) (int, error)
}

// VAPID identifies this server to push services.
type VAPID struct {
	PublicKey  string
	PrivateKey string
	// Subscriber is a mailto: or https: contact.
	Subscriber string
}

// WebPushSender encrypts and posts payloads with VAPID authentication.
type WebPushSender struct {
	vapid  VAPID
	ttl    int
	client *http.Client
}

func NewWebPushSender(vapid VAPID, client *http.Client) *WebPushSender {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &WebPushSender{vapid: vapid, ttl: 60 * 60 * 24, client: client}
}

func (s *WebPushSender) Send(ctx context.Context, sub entity.PushSubscription, payload []byte) (int, error) {
	keys := sub.Keys.Data()
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{Auth: keys.Auth, P256dh: keys.P256dh},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.vapid.Subscriber,
		TTL:             s.ttl,
		VAPIDPublicKey:  s.vapid.PublicKey,
		VAPIDPrivateKey: s.vapid.PrivateKey,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
