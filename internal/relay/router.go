package relay

import (
	"context"
	"fmt"
	"html"
	"unicode/utf8"

	"support-relay/internal/logger"
	"support-relay/internal/models"
	"support-relay/internal/service"
)

// MaxCaptionLength is the longest caption the platform accepts on a photo.
const MaxCaptionLength = 1024

const banTimeLayout = "2006-01-02 15:04 UTC"

// Options holds presentation settings of the router.
type Options struct {
	Brand    string
	Language string
}

// Router routes user messages to category admins and admin replies back to
// users.
type Router struct {
	svc       *service.Services
	routing   Routing
	transport Transport
	archiver  *Archiver
	brand     string
	lang      string
}

func NewRouter(svc *service.Services, routing Routing, transport Transport, archiver *Archiver, opts Options) *Router {
	return &Router{
		svc:       svc,
		routing:   routing,
		transport: transport,
		archiver:  archiver,
		brand:     opts.Brand,
		lang:      opts.Language,
	}
}

// Routing exposes the admin table.
func (r *Router) Routing() Routing {
	return r.routing
}

func (r *Router) text(key string) string {
	return models.GetTranslation(r.lang, key)
}

// notify sends a service message and logs a failed delivery.
func (r *Router) notify(ctx context.Context, chatID int64, text string) {
	if _, err := r.transport.SendText(ctx, chatID, text); err != nil {
		logger.Warningf("Failed to notify chat %d: %v", chatID, err)
	}
}

func (r *Router) touch(ctx context.Context, in *Inbound) bool {
	if err := r.svc.Users.Touch(ctx, in.From); err != nil {
		logger.Errorf("Failed to upsert user %d: %v", in.From.ID, err)
		r.notify(ctx, in.ChatID, r.text("store_error"))
		return false
	}
	return true
}

func identityHTML(id service.Identity) string {
	name := id.FullName()
	handle := "-"
	if id.Username != "" {
		handle = "@" + id.Username
	}
	return fmt.Sprintf("%s (%s) | <code>%d</code>", html.EscapeString(name), html.EscapeString(handle), id.ID)
}

func (r *Router) banNotice(ban *models.Ban) string {
	reason := ban.Reason
	if reason == "" {
		reason = "-"
	}
	return fmt.Sprintf(r.text("banned_notice"), ban.ExpiresAt.UTC().Format(banTimeLayout), html.EscapeString(reason))
}

// Start greets the sender. Admins get the admin command list.
func (r *Router) Start(ctx context.Context, in *Inbound) Outcome {
	if !r.touch(ctx, in) {
		return OutcomeFailed
	}
	if r.routing.IsAdmin(in.From.ID) {
		r.notify(ctx, in.ChatID, r.text("admin_help"))
	} else {
		r.notify(ctx, in.ChatID, fmt.Sprintf(r.text("welcome"), html.EscapeString(r.brand)))
	}
	return OutcomeWelcomed
}

// PickCategory opens a session in category. It is rejected while the user
// is banned or already has a session.
func (r *Router) PickCategory(ctx context.Context, in *Inbound, category models.Category) Outcome {
	if !r.touch(ctx, in) {
		return OutcomeFailed
	}

	if check := r.svc.Bans.Check(ctx, in.From.ID); check.Blocks() {
		r.notify(ctx, in.ChatID, r.banNotice(check.Ban))
		return OutcomeBanned
	}

	opened, current, err := r.svc.Sessions.OpenSession(ctx, in.From.ID, category)
	if err != nil {
		logger.Errorf("Failed to open %s session for user %d: %v", category, in.From.ID, err)
		r.notify(ctx, in.ChatID, r.text("store_error"))
		return OutcomeFailed
	}
	if !opened {
		r.notify(ctx, in.ChatID, fmt.Sprintf(r.text("category_active"), current.Label()))
		return OutcomeSessionActive
	}

	logger.Infof("User %d opened a %s session", in.From.ID, category)
	r.notify(ctx, in.ChatID, fmt.Sprintf(r.text("category_selected"), category.Label()))
	return OutcomeCategorySet
}

// HandleUserMessage relays a message of an end user to the admin of the
// user's category.
func (r *Router) HandleUserMessage(ctx context.Context, in *Inbound) Outcome {
	if !r.touch(ctx, in) {
		return OutcomeFailed
	}
	if in.IsCommand() {
		return OutcomeIgnored
	}

	userID := in.From.ID
	if check := r.svc.Bans.Check(ctx, userID); check.Blocks() {
		r.notify(ctx, in.ChatID, r.banNotice(check.Ban))
		return OutcomeBanned
	}

	category, ok, err := r.svc.Sessions.GetCategory(ctx, userID)
	if err != nil {
		logger.Errorf("Failed to read session of user %d: %v", userID, err)
		r.notify(ctx, in.ChatID, r.text("store_error"))
		return OutcomeFailed
	}
	if !ok {
		r.notify(ctx, in.ChatID, r.text("pick_category"))
		return OutcomeNoCategory
	}

	adminID, ok := r.routing.AdminFor(category)
	if !ok {
		logger.Errorf("No admin configured for category %s", category)
		r.notify(ctx, in.ChatID, r.text("store_error"))
		return OutcomeFailed
	}

	header := fmt.Sprintf(r.text("envelope_header"), identityHTML(in.From), category.Label())
	var outbound []int
	if in.IsText() {
		id, err := r.transport.SendText(ctx, adminID, header+html.EscapeString(in.Text))
		if err != nil {
			logger.Errorf("Failed to relay message %d of user %d to admin %d: %v", in.MessageID, userID, adminID, err)
			r.notify(ctx, in.ChatID, r.text("relay_failed"))
			return OutcomeFailed
		}
		outbound = append(outbound, id)
	} else {
		id, err := r.transport.SendText(ctx, adminID, header+r.text("envelope_media"))
		if err != nil {
			logger.Errorf("Failed to send media header of user %d to admin %d: %v", userID, adminID, err)
			r.notify(ctx, in.ChatID, r.text("relay_failed"))
			return OutcomeFailed
		}
		outbound = append(outbound, id)

		fwd, err := r.transport.Forward(ctx, adminID, in.ChatID, in.MessageID)
		if err != nil {
			logger.Warningf("Failed to forward message %d of user %d to admin %d: %v", in.MessageID, userID, adminID, err)
		} else {
			outbound = append(outbound, fwd)
		}
	}

	failed := false
	for _, id := range outbound {
		if err := r.svc.Inbox.Record(ctx, adminID, id, userID, category); err != nil {
			logger.Errorf("%v", err)
			failed = true
		}
		if err := r.svc.Tracker.Track(ctx, userID, category, adminID, id, models.RoleToAdmin); err != nil {
			logger.Errorf("%v", err)
			failed = true
		}
	}

	err = r.svc.Log.Append(ctx, &models.MessageLogEntry{
		Direction:   models.DirectionUserToAdmin,
		Category:    category,
		UserID:      userID,
		AdminID:     adminID,
		TgMessageID: in.MessageID,
		Text:        in.Content(),
	})
	if err != nil {
		logger.Errorf("%v", err)
		failed = true
	}

	if failed {
		return OutcomeFailed
	}
	logger.Debugf("Relayed message %d of user %d to admin %d as %v", in.MessageID, userID, adminID, outbound)
	return OutcomeRelayed
}

// HandleAdminMessage consumes a pending admin action or relays an admin
// reply to the user behind the replied message.
func (r *Router) HandleAdminMessage(ctx context.Context, in *Inbound) Outcome {
	adminID := in.From.ID

	if in.IsText() && !in.IsCommand() {
		action, err := r.svc.Pending.Take(ctx, adminID)
		if err != nil {
			logger.Errorf("%v", err)
			r.notify(ctx, in.ChatID, r.text("store_error"))
			return OutcomeFailed
		}
		if action != nil {
			return r.completePending(ctx, in, action)
		}
	}

	if in.ReplyTo == nil {
		if in.IsCommand() {
			return OutcomeIgnored
		}
		r.notify(ctx, in.ChatID, r.text("admin_need_reply"))
		return OutcomeNotReply
	}

	userID, category, outcome := r.resolveTarget(ctx, in)
	if outcome != OutcomeRelayed {
		return outcome
	}

	delivered, err := r.deliverToUser(ctx, in, userID, category)
	if err != nil {
		logger.Errorf("Failed to relay reply %d of admin %d to user %d: %v", in.MessageID, adminID, userID, err)
		r.notify(ctx, in.ChatID, r.text("admin_delivery_failed"))
		return OutcomeFailed
	}

	failed := false
	if err := r.svc.Tracker.Track(ctx, userID, category, userID, delivered, models.RoleToUser); err != nil {
		logger.Errorf("%v", err)
		failed = true
	}
	if err := r.svc.Tracker.Track(ctx, userID, category, in.ChatID, in.MessageID, models.RoleAdminAuthored); err != nil {
		logger.Errorf("%v", err)
		failed = true
	}

	replyTo := in.ReplyTo.MessageID
	err = r.svc.Log.Append(ctx, &models.MessageLogEntry{
		Direction:   models.DirectionAdminToUser,
		Category:    category,
		UserID:      userID,
		AdminID:     adminID,
		TgMessageID: in.MessageID,
		TgReplyToID: &replyTo,
		Text:        in.Content(),
	})
	if err != nil {
		logger.Errorf("%v", err)
		failed = true
	}

	if failed {
		return OutcomeFailed
	}
	return OutcomeRelayed
}

// resolveTarget maps the replied message to its user and checks that the
// admin owns the category. Anything but OutcomeRelayed has been reported to
// the admin already.
func (r *Router) resolveTarget(ctx context.Context, in *Inbound) (int64, models.Category, Outcome) {
	adminID := in.From.ID
	userID, category, found, err := r.svc.Inbox.Resolve(ctx, adminID, in.ReplyTo.MessageID)
	if err != nil {
		logger.Errorf("%v", err)
		r.notify(ctx, in.ChatID, r.text("store_error"))
		return 0, "", OutcomeFailed
	}
	if !found {
		r.notify(ctx, in.ChatID, r.text("admin_target_not_found"))
		return 0, "", OutcomeUnmapped
	}
	if !r.routing.Owns(adminID, category) {
		logger.Warningf("Admin %d tried to act on a %s conversation of user %d", adminID, category, userID)
		r.notify(ctx, in.ChatID, r.text("admin_not_owner"))
		return 0, "", OutcomeForbidden
	}
	return userID, category, OutcomeRelayed
}

// deliverToUser sends the admin content and returns the id of the message
// the user received.
func (r *Router) deliverToUser(ctx context.Context, in *Inbound, userID int64, category models.Category) (int, error) {
	if !in.IsText() {
		return r.transport.Copy(ctx, userID, in.ChatID, in.MessageID)
	}

	body := fmt.Sprintf(r.text("reply_prefix"), category.Label()) + html.EscapeString(in.Text)

	banner, err := r.svc.Settings.Banner(ctx, category)
	if err != nil {
		logger.Warningf("Sending reply without banner: %v", err)
	}
	if banner != "" && utf8.RuneCountInString(body) <= MaxCaptionLength {
		id, err := r.transport.SendPhoto(ctx, userID, banner, body)
		if err == nil {
			return id, nil
		}
		logger.Warningf("Banner reply to user %d failed, sending plain text: %v", userID, err)
	}
	return r.transport.SendText(ctx, userID, body)
}

func (r *Router) completePending(ctx context.Context, in *Inbound, action *models.PendingAdminAction) Outcome {
	switch action.Action {
	case models.ActionBanReason:
		return r.completeBan(ctx, in, action)
	}
	logger.Warningf("Dropping unknown pending action %q of admin %d", action.Action, action.AdminID)
	return OutcomeIgnored
}
