package pushsvc

import (
	"context"

	"github.com/appleboy/go-fcm"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
)

// FCMService delivers web-push messages through Firebase Cloud Messaging.
type FCMService struct {
	client *fcm.Client
	logger core.Logger
}

var _ core.PushService = (*FCMService)(nil)

func NewFCMService(conf *core.Config, logger core.Logger) (*FCMService, error) {
	client, err := fcm.NewClient(conf.FCMServerKey)
	if err != nil {
		return nil, errors.Wrap(err, "creating FCM client")
	}
	return &FCMService{client: client, logger: logger}, nil
}

func (svc *FCMService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	payload := make(map[string]interface{}, len(data))
	for k, v := range data {
		payload[k] = v
	}
	msg := &fcm.Message{
		To:   token,
		Data: payload,
		Notification: &fcm.Notification{
			Title: title,
			Body:  body,
		},
	}

	res, err := svc.client.SendWithContext(ctx, msg)
	if err != nil {
		return errors.Wrap(err, "sending push message")
	}
	if res.Failure > 0 {
		for _, result := range res.Results {
			if result.Error != nil {
				return errors.Wrap(result.Error, "push delivery rejected")
			}
		}
	}
	return nil
}
