package relay

import (
	"fmt"
	"strings"
	"time"

	"support-relay/internal/models"
)

const transcriptTimeLayout = "2006-01-02 15:04:05"

// Transcript is the archived record of one conversation.
type Transcript struct {
	ID       string
	UserID   int64
	ActorID  int64
	Category models.Category
	ClosedAt time.Time
	Body     string
}

// FileName is the name of the archived document.
func (t *Transcript) FileName() string {
	return fmt.Sprintf("transcript-%d-%s.txt", t.UserID, t.ID)
}

// RenderTranscript renders one line per entry, in the given order.
func RenderTranscript(entries []models.MessageLogEntry) string {
	var b strings.Builder
	for _, e := range entries {
		text := e.Text
		if strings.TrimSpace(text) == "" {
			text = models.NonTextPlaceholder
		}
		fmt.Fprintf(&b, "[%s] [%s] %s: %s\n",
			e.CreatedAt.UTC().Format(transcriptTimeLayout), e.Category, e.Direction, text)
	}
	return b.String()
}
