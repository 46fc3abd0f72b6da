package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"support-relay/internal/models"
	"support-relay/internal/relay"
)

const captionTimeLayout = "2006-01-02 15:04:05 UTC"

// DocumentSender is the part of *telego.Bot the sink needs.
type DocumentSender interface {
	SendDocument(ctx context.Context, params *telego.SendDocumentParams) (*telego.Message, error)
}

// TelegramSink posts transcripts as text documents to the archive chat.
type TelegramSink struct {
	sender DocumentSender
	chatID int64
	lang   string
}

var _ relay.ArchiveSink = (*TelegramSink)(nil)

func NewTelegramSink(sender DocumentSender, chatID int64, lang string) *TelegramSink {
	return &TelegramSink{sender: sender, chatID: chatID, lang: lang}
}

// Caption describes the transcript in the archive chat.
func Caption(lang string, t *relay.Transcript) string {
	return fmt.Sprintf(models.GetTranslation(lang, "archive_caption"),
		t.UserID, t.ActorID, t.Category.Label(), t.ClosedAt.UTC().Format(captionTimeLayout))
}

func (s *TelegramSink) Archive(ctx context.Context, t *relay.Transcript) error {
	_, err := s.sender.SendDocument(ctx, &telego.SendDocumentParams{
		ChatID:    telego.ChatID{ID: s.chatID},
		Document:  tu.File(tu.NameReader(strings.NewReader(t.Body), t.FileName())),
		Caption:   Caption(s.lang, t),
		ParseMode: telego.ModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send transcript %s to archive chat %d: %w", t.ID, s.chatID, err)
	}
	return nil
}
