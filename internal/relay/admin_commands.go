package relay

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"support-relay/internal/logger"
	"support-relay/internal/models"
)

// BeginBan asks the admin for a ban reason for the user behind the replied
// message. The next plain text of the admin completes the ban.
func (r *Router) BeginBan(ctx context.Context, in *Inbound) Outcome {
	if in.ReplyTo == nil {
		r.notify(ctx, in.ChatID, r.text("admin_need_reply"))
		return OutcomeNotReply
	}
	userID, category, outcome := r.resolveTarget(ctx, in)
	if outcome != OutcomeRelayed {
		return outcome
	}

	err := r.svc.Pending.Set(ctx, in.From.ID, models.ActionBanReason, userID, category, in.ReplyTo.MessageID)
	if err != nil {
		logger.Errorf("%v", err)
		r.notify(ctx, in.ChatID, r.text("ban_failed"))
		return OutcomeFailed
	}
	r.notify(ctx, in.ChatID, fmt.Sprintf(r.text("ban_ask_reason"), userID))
	return OutcomeAwaitingInput
}

func (r *Router) completeBan(ctx context.Context, in *Inbound, action *models.PendingAdminAction) Outcome {
	adminID := in.From.ID
	userID := action.TargetUserID
	reason := strings.TrimSpace(in.Text)

	ban, err := r.svc.Bans.Impose(ctx, userID, adminID, reason)
	if err != nil {
		logger.Errorf("%v", err)
		r.notify(ctx, in.ChatID, r.text("ban_failed"))
		return OutcomeFailed
	}
	logger.Infof("Admin %d banned user %d until %s: %s", adminID, userID, ban.ExpiresAt.Format(banTimeLayout), reason)

	err = r.svc.Log.Append(ctx, &models.MessageLogEntry{
		Direction:   models.DirectionSystem,
		Category:    action.Category,
		UserID:      userID,
		AdminID:     adminID,
		TgMessageID: in.MessageID,
		Text:        fmt.Sprintf("ban until %s: %s", ban.ExpiresAt.UTC().Format(banTimeLayout), reason),
	})
	if err != nil {
		logger.Errorf("%v", err)
	}

	until := ban.ExpiresAt.UTC().Format(banTimeLayout)
	r.notify(ctx, in.ChatID, fmt.Sprintf(r.text("ban_done_admin"), userID, until, html.EscapeString(reason)))
	r.notify(ctx, userID, r.banNotice(ban))
	return OutcomePendingConsumed
}

// Unban lifts the ban of the user behind the replied message.
func (r *Router) Unban(ctx context.Context, in *Inbound) Outcome {
	if in.ReplyTo == nil {
		r.notify(ctx, in.ChatID, r.text("admin_need_reply"))
		return OutcomeNotReply
	}
	userID, category, outcome := r.resolveTarget(ctx, in)
	if outcome != OutcomeRelayed {
		return outcome
	}

	if err := r.svc.Bans.Lift(ctx, userID); err != nil {
		logger.Errorf("%v", err)
		r.notify(ctx, in.ChatID, r.text("store_error"))
		return OutcomeFailed
	}
	err := r.svc.Log.Append(ctx, &models.MessageLogEntry{
		Direction:   models.DirectionSystem,
		Category:    category,
		UserID:      userID,
		AdminID:     in.From.ID,
		TgMessageID: in.MessageID,
		Text:        "ban lifted",
	})
	if err != nil {
		logger.Errorf("%v", err)
	}

	r.notify(ctx, in.ChatID, fmt.Sprintf(r.text("unban_done"), userID))
	r.notify(ctx, userID, r.text("unban_user"))
	return OutcomeUnbanned
}

// SetBanner sets the reply banner of every category the admin owns from the
// attached or replied photo. The argument "off" clears it.
func (r *Router) SetBanner(ctx context.Context, in *Inbound, arg string) Outcome {
	adminID := in.From.ID
	owned := r.routing.CategoriesOf(adminID)
	if len(owned) == 0 {
		r.notify(ctx, in.ChatID, r.text("admin_no_category"))
		return OutcomeForbidden
	}

	fileID := ""
	clearing := strings.EqualFold(strings.TrimSpace(arg), "off")
	if !clearing {
		fileID = in.PhotoFileID
		if fileID == "" && in.ReplyTo != nil {
			fileID = in.ReplyTo.PhotoFileID
		}
		if fileID == "" {
			r.notify(ctx, in.ChatID, r.text("banner_need_photo"))
			return OutcomeInvalid
		}
	}

	labels := make([]string, 0, len(owned))
	for _, category := range owned {
		var err error
		if clearing {
			err = r.svc.Settings.ClearBanner(ctx, category, adminID)
		} else {
			err = r.svc.Settings.SetBanner(ctx, category, fileID, adminID)
		}
		if err != nil {
			logger.Errorf("%v", err)
			r.notify(ctx, in.ChatID, r.text("store_error"))
			return OutcomeFailed
		}
		labels = append(labels, category.Label())
	}

	if clearing {
		r.notify(ctx, in.ChatID, fmt.Sprintf(r.text("banner_cleared"), strings.Join(labels, ", ")))
		return OutcomeBannerCleared
	}
	r.notify(ctx, in.ChatID, fmt.Sprintf(r.text("banner_set"), strings.Join(labels, ", ")))
	return OutcomeBannerSet
}

// UserStats answers /users with the total, "active7d" or "today" counter.
func (r *Router) UserStats(ctx context.Context, in *Inbound, arg string) Outcome {
	if !r.routing.IsAdmin(in.From.ID) {
		return OutcomeIgnored
	}

	stats, err := r.svc.Users.Stats(ctx)
	if err != nil {
		logger.Errorf("%v", err)
		r.notify(ctx, in.ChatID, fmt.Sprintf(r.text("stats_error"), html.EscapeString(err.Error())))
		return OutcomeFailed
	}

	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "active7d":
		r.notify(ctx, in.ChatID, fmt.Sprintf(r.text("users_active7d"), stats.Active7d))
	case "today":
		r.notify(ctx, in.ChatID, fmt.Sprintf(r.text("users_today"), stats.Today))
	default:
		r.notify(ctx, in.ChatID, fmt.Sprintf(r.text("users_total"), stats.Total))
	}
	return OutcomeStats
}

// EndChat ends the conversation of the sender, or for an admin the
// conversation behind the replied message.
func (r *Router) EndChat(ctx context.Context, in *Inbound) Outcome {
	var err error
	if r.routing.IsAdmin(in.From.ID) {
		if in.ReplyTo == nil {
			r.notify(ctx, in.ChatID, r.text("admin_need_reply"))
			return OutcomeNotReply
		}
		_, err = r.archiver.EndByAdmin(ctx, in.From.ID, in.ReplyTo.MessageID)
	} else {
		if !r.touch(ctx, in) {
			return OutcomeFailed
		}
		_, err = r.archiver.EndByUser(ctx, in.From.ID)
	}

	switch {
	case err == nil:
		return OutcomeEnded
	case errors.Is(err, ErrNoConversation):
		r.notify(ctx, in.ChatID, r.text("nothing_to_end"))
		return OutcomeNothingToEnd
	case errors.Is(err, ErrUnmapped):
		r.notify(ctx, in.ChatID, r.text("admin_target_not_found"))
		return OutcomeUnmapped
	case errors.Is(err, ErrForbidden):
		r.notify(ctx, in.ChatID, r.text("admin_not_owner"))
		return OutcomeForbidden
	}

	logger.Errorf("Failed to end chat requested by %d: %v", in.From.ID, err)
	r.notify(ctx, in.ChatID, r.text("end_failed"))
	return OutcomeFailed
}
