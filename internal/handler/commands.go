package handler

import (
	"context"

	"support-relay/internal/models"
	"support-relay/internal/relay"
)

// dispatchCommand runs the command for the sender's role. Unknown commands
// go through the normal message path, which ignores them.
func (h *Handler) dispatchCommand(ctx context.Context, in *relay.Inbound, cmd Command) relay.Outcome {
	switch cmd.Name {
	case "start", "help":
		return h.router.Start(ctx, in)
	case "end":
		return h.router.EndChat(ctx, in)
	}

	if h.router.Routing().IsAdmin(in.From.ID) {
		switch cmd.Name {
		case "ban":
			return h.router.BeginBan(ctx, in)
		case "unban":
			return h.router.Unban(ctx, in)
		case "setbanner":
			return h.router.SetBanner(ctx, in, cmd.Arg)
		case "users":
			return h.router.UserStats(ctx, in, cmd.Arg)
		}
		return h.router.HandleAdminMessage(ctx, in)
	}

	if category, err := models.ParseCategory(cmd.Name); err == nil {
		return h.router.PickCategory(ctx, in, category)
	}
	return h.router.HandleUserMessage(ctx, in)
}
