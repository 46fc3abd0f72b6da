package handler

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"support-relay/internal/config"
	"support-relay/internal/crash"
	"support-relay/internal/dedup"
	"support-relay/internal/logger"
	"support-relay/internal/relay"
)

var (
	// messageProcessingSemaphore bounds concurrently running handlers.
	messageProcessingSemaphore = make(chan struct{}, 32)
	handlersWG                 sync.WaitGroup
	activeHandlers             int64
)

// Initialize sizes the handler pool from configuration.
func Initialize(cfg *config.Config) {
	size := cfg.Relay.HandlerConcurrency
	if size <= 0 {
		size = 32
	}
	messageProcessingSemaphore = make(chan struct{}, size)
}

// GetActiveHandlersCount returns the number of handlers currently running.
func GetActiveHandlersCount() int {
	return int(atomic.LoadInt64(&activeHandlers))
}

// WaitForHandlers blocks until every started handler returned.
func WaitForHandlers() {
	handlersWG.Wait()
}

// Handler turns Telegram updates into relay operations.
type Handler struct {
	router      *relay.Router
	filter      dedup.Filter
	botUsername string
}

func New(router *relay.Router, filter dedup.Filter, botUsername string) *Handler {
	if filter == nil {
		filter = dedup.Noop{}
	}
	return &Handler{router: router, filter: filter, botUsername: botUsername}
}

// SetupMessageHandlers configures the middleware chain and the message handler.
func (h *Handler) SetupMessageHandlers(bh *th.BotHandler) {
	bh.Use(h.limitConcurrency)
	bh.Use(h.dropDuplicates)

	bh.HandleMessage(func(ctx *th.Context, message telego.Message) error {
		outcome := h.HandleMessage(ctx, message)
		recordOutcome(outcome)
		return nil
	})
}

// limitConcurrency waits for a free slot, tracks the handler for shutdown
// and recovers panics.
func (h *Handler) limitConcurrency(ctx *th.Context, update telego.Update) error {
	select {
	case messageProcessingSemaphore <- struct{}{}:
	case <-ctx.Done():
		incrementCounter(&totalTimeouts)
		return ctx.Err()
	}
	handlersWG.Add(1)
	atomic.AddInt64(&activeHandlers, 1)
	defer func() {
		atomic.AddInt64(&activeHandlers, -1)
		handlersWG.Done()
		<-messageProcessingSemaphore
	}()
	defer crash.RecoverWithStack("update-handler")

	return ctx.Next(update)
}

// dropDuplicates skips updates delivered more than once.
func (h *Handler) dropDuplicates(ctx *th.Context, update telego.Update) error {
	first, err := h.filter.FirstSeen(ctx, update.UpdateID)
	if err != nil {
		logger.Warningf("Update dedup unavailable, processing update %d: %v", update.UpdateID, err)
		return ctx.Next(update)
	}
	if !first {
		incrementCounter(&totalDuplicates)
		logger.Debugf("Skipping duplicate update %d", update.UpdateID)
		return nil
	}
	return ctx.Next(update)
}

// HandleMessage routes one private message. Once started, the message is
// processed to the end even if the update context is canceled by shutdown.
func (h *Handler) HandleMessage(ctx context.Context, message telego.Message) relay.Outcome {
	ctx = context.WithoutCancel(ctx)
	if message.From == nil || message.From.IsBot || message.Chat.Type != "private" {
		return relay.OutcomeIgnored
	}
	incrementCounter(&totalMessagesProcessed)

	in := toInbound(message)
	cmd, ok := parseCommand(commandText(message), h.botUsername)
	if ok {
		return h.dispatchCommand(ctx, in, cmd)
	}
	if h.router.Routing().IsAdmin(in.From.ID) {
		return h.router.HandleAdminMessage(ctx, in)
	}
	return h.router.HandleUserMessage(ctx, in)
}

func commandText(message telego.Message) string {
	if message.Text != "" {
		return message.Text
	}
	return message.Caption
}

func toInbound(message telego.Message) *relay.Inbound {
	in := &relay.Inbound{
		ChatID:      message.Chat.ID,
		MessageID:   message.MessageID,
		Text:        message.Text,
		Caption:     message.Caption,
		PhotoFileID: largestPhoto(message.Photo),
	}
	if message.From != nil {
		in.From.ID = message.From.ID
		in.From.Username = message.From.Username
		in.From.FirstName = message.From.FirstName
		in.From.LastName = message.From.LastName
	}
	if reply := message.ReplyToMessage; reply != nil {
		in.ReplyTo = &relay.Reply{
			MessageID:   reply.MessageID,
			PhotoFileID: largestPhoto(reply.Photo),
		}
	}
	return in
}

// largestPhoto picks the biggest size; Telegram lists sizes ascending.
func largestPhoto(sizes []telego.PhotoSize) string {
	if len(sizes) == 0 {
		return ""
	}
	return sizes[len(sizes)-1].FileID
}

// Command is a parsed bot command.
type Command struct {
	Name string
	Arg  string
}

// parseCommand splits "/name@bot arg" into its parts. Commands addressed to
// another bot are not ours.
func parseCommand(text, botUsername string) (Command, bool) {
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}, false
	}

	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		target := name[at+1:]
		name = name[:at]
		if botUsername != "" && !strings.EqualFold(target, botUsername) {
			return Command{}, false
		}
	}
	if name == "" {
		return Command{}, false
	}

	arg := strings.TrimSpace(strings.TrimPrefix(text, fields[0]))
	return Command{Name: strings.ToLower(name), Arg: arg}, true
}
