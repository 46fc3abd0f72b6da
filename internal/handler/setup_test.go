package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"support-relay/internal/config"
	"support-relay/internal/models"
	"support-relay/internal/relay"
	"support-relay/internal/service"
	"support-relay/internal/storage"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   Command
		wantOK bool
	}{
		{"plain", "/start", Command{Name: "start"}, true},
		{"argument", "/users  active7d ", Command{Name: "users", Arg: "active7d"}, true},
		{"addressed to us", "/End@SupportBot", Command{Name: "end"}, true},
		{"addressed elsewhere", "/end@OtherBot", Command{}, false},
		{"not a command", "hello /start", Command{}, false},
		{"bare slash", "/", Command{}, false},
		{"empty", "", Command{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCommand(tt.text, "supportbot")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLargestPhoto(t *testing.T) {
	assert.Empty(t, largestPhoto(nil))
	assert.Equal(t, "big", largestPhoto([]telego.PhotoSize{{FileID: "small"}, {FileID: "big"}}))
}

type recordingTransport struct {
	mu     sync.Mutex
	nextID int
	texts  map[int64][]string
	lastID map[int64]int
}

func (r *recordingTransport) send(chatID int64, text string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.texts[chatID] = append(r.texts[chatID], text)
	r.lastID[chatID] = r.nextID
	return r.nextID, nil
}

func (r *recordingTransport) SendText(_ context.Context, chatID int64, text string) (int, error) {
	return r.send(chatID, text)
}

func (r *recordingTransport) SendPhoto(_ context.Context, chatID int64, _, caption string) (int, error) {
	return r.send(chatID, caption)
}

func (r *recordingTransport) Forward(_ context.Context, toChatID, _ int64, _ int) (int, error) {
	return r.send(toChatID, "")
}

func (r *recordingTransport) Copy(_ context.Context, toChatID, _ int64, _ int) (int, error) {
	return r.send(toChatID, "")
}

func (r *recordingTransport) Delete(context.Context, int64, int) relay.DeleteOutcome {
	return relay.Deleted
}

type discardSink struct{}

func (discardSink) Archive(context.Context, *relay.Transcript) error { return nil }

func newTestHandler(t *testing.T, sink relay.ArchiveSink) (*Handler, *recordingTransport, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: storage.NowUTC,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, storage.Migrate(db))

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := service.NewWithClock(db, &config.Config{}, func() time.Time { return now })
	routing := relay.NewRouting(map[models.Category]int64{
		models.CategoryWebSupport: 100,
		models.CategoryAdvertise:  200,
		models.CategoryReportLink: 300,
	})
	transport := &recordingTransport{texts: map[int64][]string{}, lastID: map[int64]int{}}
	archiver := relay.NewArchiver(svc, routing, transport, sink, 1, models.LangEnglish)
	router := relay.NewRouter(svc, routing, transport, archiver, relay.Options{Brand: "Acme", Language: models.LangEnglish})
	return New(router, nil, "supportbot"), transport, db
}

func privateMessage(fromID int64, messageID int, text string) telego.Message {
	return telego.Message{
		MessageID: messageID,
		Chat:      telego.Chat{ID: fromID, Type: "private"},
		From:      &telego.User{ID: fromID, FirstName: "Ann", Username: "ann"},
		Text:      text,
	}
}

func TestHandleMessageDispatch(t *testing.T) {
	ctx := context.Background()
	h, transport, _ := newTestHandler(t, discardSink{})

	assert.Equal(t, relay.OutcomeWelcomed, h.HandleMessage(ctx, privateMessage(1, 1, "/start")))
	assert.Equal(t, relay.OutcomeNoCategory, h.HandleMessage(ctx, privateMessage(1, 2, "hello")))
	assert.Equal(t, relay.OutcomeCategorySet, h.HandleMessage(ctx, privateMessage(1, 3, "/advertise@supportbot")))
	assert.Equal(t, relay.OutcomeSessionActive, h.HandleMessage(ctx, privateMessage(1, 4, "/websupport")))
	assert.Equal(t, relay.OutcomeRelayed, h.HandleMessage(ctx, privateMessage(1, 5, "hello")))
	require.Len(t, transport.texts[200], 1)
	assert.Contains(t, transport.texts[200][0], "hello")

	// users cannot run admin commands, they are dropped like any command
	assert.Equal(t, relay.OutcomeIgnored, h.HandleMessage(ctx, privateMessage(1, 6, "/ban")))

	reply := privateMessage(200, 7, "thanks")
	reply.ReplyToMessage = &telego.Message{MessageID: transport.lastID[200]}
	assert.Equal(t, relay.OutcomeRelayed, h.HandleMessage(ctx, reply))
	assert.Contains(t, transport.texts[1][len(transport.texts[1])-1], "thanks")

	assert.Equal(t, relay.OutcomeStats, h.HandleMessage(ctx, privateMessage(200, 8, "/users today")))
	assert.Equal(t, relay.OutcomeEnded, h.HandleMessage(ctx, privateMessage(1, 9, "/end")))
}

func TestHandleMessageIgnoresNonPrivate(t *testing.T) {
	h, _, _ := newTestHandler(t, discardSink{})

	group := privateMessage(1, 1, "/start")
	group.Chat.Type = "supergroup"
	assert.Equal(t, relay.OutcomeIgnored, h.HandleMessage(context.Background(), group))

	bot := privateMessage(1, 2, "/start")
	bot.From.IsBot = true
	assert.Equal(t, relay.OutcomeIgnored, h.HandleMessage(context.Background(), bot))
}

func TestHandleMessageCaptionCommand(t *testing.T) {
	h, _, _ := newTestHandler(t, discardSink{})

	msg := privateMessage(200, 1, "")
	msg.Caption = "/setbanner"
	msg.Photo = []telego.PhotoSize{{FileID: "thumb"}, {FileID: "full"}}
	assert.Equal(t, relay.OutcomeBannerSet, h.HandleMessage(context.Background(), msg))
}

// cancelingSink cancels the update context once the transcript is archived,
// the way a shutdown would in the middle of an end-chat.
type cancelingSink struct {
	cancel   context.CancelFunc
	archived int
}

func (s *cancelingSink) Archive(context.Context, *relay.Transcript) error {
	s.archived++
	s.cancel()
	return nil
}

func TestHandleMessageCompletesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &cancelingSink{cancel: cancel}
	h, transport, db := newTestHandler(t, sink)

	require.Equal(t, relay.OutcomeCategorySet, h.HandleMessage(ctx, privateMessage(1, 1, "/websupport")))
	require.Equal(t, relay.OutcomeRelayed, h.HandleMessage(ctx, privateMessage(1, 2, "hello")))
	require.Equal(t, relay.OutcomeEnded, h.HandleMessage(ctx, privateMessage(1, 3, "/end")))
	require.Error(t, ctx.Err())
	assert.Equal(t, 1, sink.archived)

	for _, model := range []interface{}{
		&models.Session{}, &models.MessageLogEntry{}, &models.InboxMapping{}, &models.TrackedMessage{},
	} {
		var n int64
		require.NoError(t, db.Model(model).Where("user_id = ?", 1).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
	assert.Contains(t, transport.texts[1][len(transport.texts[1])-1], "conversation has ended")

	// an update that starts after cancellation still runs
	assert.Equal(t, relay.OutcomeCategorySet, h.HandleMessage(ctx, privateMessage(1, 4, "/advertise")))
	assert.Equal(t, relay.OutcomeRelayed, h.HandleMessage(ctx, privateMessage(1, 5, "hello again")))
}

func TestCaptionedMediaCommandIsNotRelayed(t *testing.T) {
	ctx := context.Background()
	h, transport, _ := newTestHandler(t, discardSink{})
	require.Equal(t, relay.OutcomeCategorySet, h.HandleMessage(ctx, privateMessage(1, 1, "/websupport")))

	msg := privateMessage(1, 2, "")
	msg.Caption = "/ban"
	msg.Photo = []telego.PhotoSize{{FileID: "p"}}
	assert.Equal(t, relay.OutcomeIgnored, h.HandleMessage(ctx, msg))
	assert.Empty(t, transport.texts[200])
	assert.Empty(t, transport.texts[100])
}
