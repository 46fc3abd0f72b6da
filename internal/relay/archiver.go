package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"support-relay/internal/logger"
	"support-relay/internal/models"
	"support-relay/internal/service"
	"support-relay/internal/storage"
)

var (
	// ErrNoConversation is returned when the user has neither a session nor
	// logged messages.
	ErrNoConversation = errors.New("no conversation to end")
	ErrUnmapped       = errors.New("replied message is not mapped to a user")
	ErrForbidden      = errors.New("admin does not own the category")
)

// EndReport summarizes an end-chat run.
type EndReport struct {
	UserID   int64
	ActorID  int64
	Category models.Category
	Archived bool
	Deleted  int
	Failed   int
	Unknown  int
	Wiped    storage.WipeResult
}

// Archiver ends conversations: it archives the transcript, deletes tracked
// messages on a best-effort basis and wipes the per-user state.
type Archiver struct {
	svc         *service.Services
	routing     Routing
	transport   Transport
	sink        ArchiveSink
	concurrency int
	lang        string
	now         service.Clock
}

func NewArchiver(svc *service.Services, routing Routing, transport Transport, sink ArchiveSink, concurrency int, lang string) *Archiver {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Archiver{
		svc:         svc,
		routing:     routing,
		transport:   transport,
		sink:        sink,
		concurrency: concurrency,
		lang:        lang,
		now:         storage.NowUTC,
	}
}

// WithClock replaces the clock used for transcript timestamps.
func (a *Archiver) WithClock(now service.Clock) *Archiver {
	a.now = now
	return a
}

// EndByUser ends the conversation of userID at the user's request.
func (a *Archiver) EndByUser(ctx context.Context, userID int64) (*EndReport, error) {
	category, ok, err := a.svc.Sessions.GetCategory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		history, err := a.svc.Log.History(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(history) == 0 {
			return nil, ErrNoConversation
		}
		category = history[len(history)-1].Category
	}
	return a.EndChat(ctx, userID, userID, category)
}

// EndByAdmin ends the conversation behind an admin-facing message. The
// admin must own its category.
func (a *Archiver) EndByAdmin(ctx context.Context, adminID int64, repliedMessageID int) (*EndReport, error) {
	userID, category, found, err := a.svc.Inbox.Resolve(ctx, adminID, repliedMessageID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUnmapped
	}
	if !a.routing.Owns(adminID, category) {
		return nil, fmt.Errorf("%w: admin %d, category %s", ErrForbidden, adminID, category)
	}
	return a.EndChat(ctx, userID, adminID, category)
}

// EndChat archives, cleans up and wipes the conversation of userID. Every
// step runs even when an earlier one fails; only a failed wipe is returned
// as an error.
func (a *Archiver) EndChat(ctx context.Context, userID, actorID int64, category models.Category) (*EndReport, error) {
	ctx = context.WithoutCancel(ctx)
	report := &EndReport{UserID: userID, ActorID: actorID, Category: category}

	history, err := a.svc.Log.History(ctx, userID)
	if err != nil {
		logger.Errorf("Archiving user %d without transcript: %v", userID, err)
	}
	if len(history) > 0 {
		transcript := &Transcript{
			ID:       uuid.NewString(),
			UserID:   userID,
			ActorID:  actorID,
			Category: category,
			ClosedAt: a.now(),
			Body:     RenderTranscript(history),
		}
		if err := a.sink.Archive(ctx, transcript); err != nil {
			logger.Errorf("Failed to archive transcript of user %d: %v", userID, err)
		} else {
			report.Archived = true
		}
	}

	tracked, err := a.svc.Tracker.List(ctx, userID)
	if err != nil {
		logger.Errorf("Skipping message cleanup of user %d: %v", userID, err)
	}
	a.deleteTracked(ctx, tracked, report)

	wiped, err := a.svc.WipeConversation(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("wipe conversation of user %d: %w", userID, err)
	}
	report.Wiped = wiped

	logger.Infof("Conversation of user %d (%s) ended by %d: archived=%t deleted=%d failed=%d unknown=%d",
		userID, category, actorID, report.Archived, report.Deleted, report.Failed, report.Unknown)

	a.notify(ctx, userID, models.GetTranslation(a.lang, "chat_ended_user"))
	if actorID != userID {
		a.notify(ctx, actorID, fmt.Sprintf(models.GetTranslation(a.lang, "chat_ended_admin"),
			userID, category.Label(), report.Deleted, report.Failed, report.Unknown))
	}
	return report, nil
}

// deleteTracked deletes the tracked messages on a bounded pool and counts
// the outcomes.
func (a *Archiver) deleteTracked(ctx context.Context, tracked []models.TrackedMessage, report *EndReport) {
	if len(tracked) == 0 {
		return
	}

	var deleted, failed, unknown atomic.Int64
	count := func(outcome DeleteOutcome) {
		switch outcome {
		case Deleted:
			deleted.Add(1)
		case DeleteFailed:
			failed.Add(1)
		default:
			unknown.Add(1)
		}
	}

	pool, err := ants.NewPool(a.concurrency)
	if err != nil {
		logger.Warningf("Deleting sequentially, worker pool unavailable: %v", err)
		for _, msg := range tracked {
			count(a.transport.Delete(ctx, msg.ChatID, msg.MessageID))
		}
	} else {
		defer pool.Release()

		var wg sync.WaitGroup
		for _, msg := range tracked {
			wg.Add(1)
			m := msg
			err := pool.Submit(func() {
				defer wg.Done()
				count(a.transport.Delete(ctx, m.ChatID, m.MessageID))
			})
			if err != nil {
				wg.Done()
				count(a.transport.Delete(ctx, m.ChatID, m.MessageID))
			}
		}
		wg.Wait()
	}

	report.Deleted = int(deleted.Load())
	report.Failed = int(failed.Load())
	report.Unknown = int(unknown.Load())
}

func (a *Archiver) notify(ctx context.Context, chatID int64, text string) {
	if _, err := a.transport.SendText(ctx, chatID, text); err != nil {
		logger.Warningf("Failed to notify chat %d: %v", chatID, err)
	}
}
