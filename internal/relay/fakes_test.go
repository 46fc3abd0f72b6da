package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"support-relay/internal/config"
	"support-relay/internal/models"
	"support-relay/internal/service"
	"support-relay/internal/storage"
)

const (
	webAdmin    int64 = 100
	adsAdmin    int64 = 200
	reportAdmin int64 = 300
)

type sentMessage struct {
	Kind       string
	ChatID     int64
	Text       string
	FileID     string
	FromChatID int64
	SourceID   int
	ID         int
}

type deleteCall struct {
	ChatID    int64
	MessageID int
}

type fakeTransport struct {
	mu        sync.Mutex
	nextID    int
	sent      []sentMessage
	deletes   []deleteCall
	failChats map[int64]bool
	failPhoto bool
	onDelete  func(chatID int64, messageID int) DeleteOutcome
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{nextID: 1000, failChats: map[int64]bool{}}
}

func (f *fakeTransport) record(m sentMessage) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failChats[m.ChatID] {
		return 0, fmt.Errorf("chat %d unreachable", m.ChatID)
	}
	f.nextID++
	m.ID = f.nextID
	f.sent = append(f.sent, m)
	return m.ID, nil
}

func (f *fakeTransport) SendText(_ context.Context, chatID int64, text string) (int, error) {
	return f.record(sentMessage{Kind: "text", ChatID: chatID, Text: text})
}

func (f *fakeTransport) SendPhoto(_ context.Context, chatID int64, fileID, caption string) (int, error) {
	if f.failPhoto {
		return 0, errors.New("bad file id")
	}
	return f.record(sentMessage{Kind: "photo", ChatID: chatID, FileID: fileID, Text: caption})
}

func (f *fakeTransport) Forward(_ context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	return f.record(sentMessage{Kind: "forward", ChatID: toChatID, FromChatID: fromChatID, SourceID: messageID})
}

func (f *fakeTransport) Copy(_ context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	return f.record(sentMessage{Kind: "copy", ChatID: toChatID, FromChatID: fromChatID, SourceID: messageID})
}

func (f *fakeTransport) Delete(_ context.Context, chatID int64, messageID int) DeleteOutcome {
	f.mu.Lock()
	f.deletes = append(f.deletes, deleteCall{ChatID: chatID, MessageID: messageID})
	onDelete := f.onDelete
	f.mu.Unlock()
	if onDelete != nil {
		return onDelete(chatID, messageID)
	}
	return Deleted
}

// to returns the messages sent to chatID, oldest first.
func (f *fakeTransport) to(chatID int64) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeTransport) last(chatID int64) sentMessage {
	msgs := f.to(chatID)
	if len(msgs) == 0 {
		return sentMessage{}
	}
	return msgs[len(msgs)-1]
}

type fakeSink struct {
	mu          sync.Mutex
	transcripts []*Transcript
	err         error
}

func (s *fakeSink) Archive(_ context.Context, t *Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.transcripts = append(s.transcripts, t)
	return nil
}

type relayFixture struct {
	db        *gorm.DB
	svc       *service.Services
	transport *fakeTransport
	sink      *fakeSink
	router    *Router
	archiver  *Archiver
	now       time.Time
	nextMsgID int
}

func newRelayFixture(t *testing.T) *relayFixture {
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

	fx := &relayFixture{
		db:        db,
		transport: newFakeTransport(),
		sink:      &fakeSink{},
		now:       time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		nextMsgID: 1,
	}
	clock := func() time.Time { return fx.now }

	cfg := &config.Config{Relay: config.RelayConfig{BanDuration: 24 * time.Hour}}
	fx.svc = service.NewWithClock(db, cfg, clock)

	routing := NewRouting(map[models.Category]int64{
		models.CategoryWebSupport: webAdmin,
		models.CategoryAdvertise:  adsAdmin,
		models.CategoryReportLink: reportAdmin,
	})
	fx.archiver = NewArchiver(fx.svc, routing, fx.transport, fx.sink, 2, models.LangEnglish).WithClock(clock)
	fx.router = NewRouter(fx.svc, routing, fx.transport, fx.archiver, Options{Brand: "Acme", Language: models.LangEnglish})
	return fx
}

// userMsg builds a private message from an end user.
func (fx *relayFixture) userMsg(userID int64, text string) *Inbound {
	fx.nextMsgID++
	return &Inbound{
		ChatID:    userID,
		MessageID: fx.nextMsgID,
		From:      service.Identity{ID: userID, Username: "ann", FirstName: "Ann"},
		Text:      text,
	}
}

// adminReply builds an admin message replying to replyTo (0 for none).
func (fx *relayFixture) adminReply(adminID int64, replyTo int, text string) *Inbound {
	fx.nextMsgID++
	in := &Inbound{
		ChatID:    adminID,
		MessageID: fx.nextMsgID,
		From:      service.Identity{ID: adminID, FirstName: "Admin"},
		Text:      text,
	}
	if replyTo != 0 {
		in.ReplyTo = &Reply{MessageID: replyTo}
	}
	return in
}

func (fx *relayFixture) count(t *testing.T, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, fx.db.Model(model).Where(where, args...).Count(&n).Error)
	return n
}
