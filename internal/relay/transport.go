package relay

import (
	"context"
	"strings"

	"support-relay/internal/service"
)

// DeleteOutcome separates a confirmed delete from a confirmed failure and
// from a result we could not classify.
type DeleteOutcome int

const (
	Deleted DeleteOutcome = iota
	DeleteFailed
	DeleteUnknown
)

func (d DeleteOutcome) String() string {
	switch d {
	case Deleted:
		return "deleted"
	case DeleteFailed:
		return "failed"
	}
	return "unknown"
}

// Transport is the messaging platform as seen by the relay. Every send
// returns the id of the message created in the target chat. Text is HTML.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	Forward(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error)
	Copy(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error)
	Delete(ctx context.Context, chatID int64, messageID int) DeleteOutcome
}

// ArchiveSink stores a finished transcript somewhere durable.
type ArchiveSink interface {
	Archive(ctx context.Context, t *Transcript) error
}

// Reply is the message an inbound message answers.
type Reply struct {
	MessageID   int
	PhotoFileID string
}

// Inbound is a private message received by the bot.
type Inbound struct {
	ChatID      int64
	MessageID   int
	From        service.Identity
	Text        string
	Caption     string
	PhotoFileID string
	ReplyTo     *Reply
}

// Content is the text or, for media, the caption.
func (m *Inbound) Content() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// IsText reports whether the message is plain text.
func (m *Inbound) IsText() bool {
	return m.Text != ""
}

// IsCommand reports whether the text, or the caption of media, looks like
// a bot command.
func (m *Inbound) IsCommand() bool {
	return strings.HasPrefix(m.Content(), "/")
}
