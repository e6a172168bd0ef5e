// README: Push notifier delivering cues to a device through Firebase Cloud Messaging.
package notify

import (
	"context"
	"log/slog"
	"time"

	"firebase.google.com/go/v4/messaging"
)

const pushTimeout = 5 * time.Second

// Sender is the subset of *messaging.Client used for delivery.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type PushNotifier struct {
	sender Sender
	token  string
	title  string
	logger *slog.Logger
	// sent, when set, receives the outcome of every delivery attempt.
	sent chan<- error
}

func NewPushNotifier(sender Sender, deviceToken, title string, logger *slog.Logger) *PushNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &PushNotifier{sender: sender, token: deviceToken, title: title, logger: logger}
}

// Say sends in the background so the calling flow never waits on the network.
func (p *PushNotifier) Say(_ context.Context, text string) {
	if text == "" || p.token == "" {
		return
	}
	msg := &messaging.Message{
		Token: p.token,
		Data: map[string]string{
			"type": "cue",
			"text": text,
		},
		Notification: &messaging.Notification{
			Title: p.title,
			Body:  text,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		id, err := p.sender.Send(ctx, msg)
		if err != nil {
			p.logger.Warn("push cue failed", "error", err)
		} else {
			p.logger.Debug("push cue sent", "message_id", id)
		}
		if p.sent != nil {
			p.sent <- err
		}
	}()
}
