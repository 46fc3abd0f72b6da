package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	ta "github.com/mymmrac/telego/telegoapi"

	"support-relay/internal/logger"
	"support-relay/internal/relay"
)

// Transport implements relay.Transport on top of the Bot API. Every call is
// retried once after the delay a 429 response asks for.
type Transport struct {
	bot   *telego.Bot
	sleep func(ctx context.Context, d time.Duration) error
}

var _ relay.Transport = (*Transport)(nil)

// NewTransport wraps bot.
func NewTransport(bot *telego.Bot) *Transport {
	return &Transport{bot: bot, sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryAfter returns the delay requested by a rate limited response.
func retryAfter(err error) (time.Duration, bool) {
	var apiErr *ta.Error
	if !errors.As(err, &apiErr) {
		return 0, false
	}
	if apiErr.ErrorCode != 429 || apiErr.Parameters == nil || apiErr.Parameters.RetryAfter <= 0 {
		return 0, false
	}
	return time.Duration(apiErr.Parameters.RetryAfter) * time.Second, true
}

// withRetry runs call, and once more after the requested delay when the
// first attempt was rate limited.
func (t *Transport) withRetry(ctx context.Context, what string, call func() error) error {
	err := call()
	if err == nil {
		return nil
	}
	wait, ok := retryAfter(err)
	if !ok {
		return err
	}
	logger.Warningf("%s rate limited, retrying in %v", what, wait)
	if err := t.sleep(ctx, wait); err != nil {
		return err
	}
	return call()
}

func (t *Transport) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	var msg *telego.Message
	err := t.withRetry(ctx, "sendMessage", func() error {
		var err error
		msg, err = t.bot.SendMessage(ctx, &telego.SendMessageParams{
			ChatID:    telego.ChatID{ID: chatID},
			Text:      text,
			ParseMode: telego.ModeHTML,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return msg.MessageID, nil
}

func (t *Transport) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	var msg *telego.Message
	err := t.withRetry(ctx, "sendPhoto", func() error {
		var err error
		msg, err = t.bot.SendPhoto(ctx, &telego.SendPhotoParams{
			ChatID:    telego.ChatID{ID: chatID},
			Photo:     telego.InputFile{FileID: fileID},
			Caption:   caption,
			ParseMode: telego.ModeHTML,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("send photo to %d: %w", chatID, err)
	}
	return msg.MessageID, nil
}

func (t *Transport) Forward(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	var msg *telego.Message
	err := t.withRetry(ctx, "forwardMessage", func() error {
		var err error
		msg, err = t.bot.ForwardMessage(ctx, &telego.ForwardMessageParams{
			ChatID:     telego.ChatID{ID: toChatID},
			FromChatID: telego.ChatID{ID: fromChatID},
			MessageID:  messageID,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("forward message %d to %d: %w", messageID, toChatID, err)
	}
	return msg.MessageID, nil
}

func (t *Transport) Copy(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	var id *telego.MessageID
	err := t.withRetry(ctx, "copyMessage", func() error {
		var err error
		id, err = t.bot.CopyMessage(ctx, &telego.CopyMessageParams{
			ChatID:     telego.ChatID{ID: toChatID},
			FromChatID: telego.ChatID{ID: fromChatID},
			MessageID:  messageID,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("copy message %d to %d: %w", messageID, toChatID, err)
	}
	return id.MessageID, nil
}

// Delete removes a message. Rejections by the API count as failed, anything
// else that goes wrong (network, timeouts) as unknown.
func (t *Transport) Delete(ctx context.Context, chatID int64, messageID int) relay.DeleteOutcome {
	err := t.withRetry(ctx, "deleteMessage", func() error {
		return t.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
			ChatID:    telego.ChatID{ID: chatID},
			MessageID: messageID,
		})
	})
	outcome := classifyDelete(err)
	if outcome != relay.Deleted {
		logger.Debugf("Delete of message %d in chat %d: %s (%v)", messageID, chatID, outcome, err)
	}
	return outcome
}

func classifyDelete(err error) relay.DeleteOutcome {
	if err == nil {
		return relay.Deleted
	}
	var apiErr *ta.Error
	if errors.As(err, &apiErr) && apiErr.ErrorCode != 429 && apiErr.ErrorCode < 500 {
		return relay.DeleteFailed
	}
	return relay.DeleteUnknown
}
