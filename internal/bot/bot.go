package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"support-relay/internal/config"
	"support-relay/internal/logger"
	"support-relay/internal/models"
)

// BotService represents the Telegram bot service
type BotService struct {
	Bot      *telego.Bot
	Handler  *th.BotHandler
	Username string
}

// Start starts the bot handler
func (b *BotService) Start() {
	b.Handler.Start()
}

// Stop stops the bot handler
func (b *BotService) Stop() {
	b.Handler.Stop()
}

// telegoLogger routes telego's own logging into the relay logger.
type telegoLogger struct{}

func (telegoLogger) Debugf(format string, args ...any) { logger.Debugf("telego: "+format, args...) }

func (telegoLogger) Errorf(format string, args ...any) { logger.Errorf("telego: "+format, args...) }

// Initialize creates the bot and its update source. The webhook server is
// nil when running in polling mode.
func Initialize(ctx context.Context, cfg *config.Config) (*BotService, *WebhookServer, error) {
	if cfg.Bot.Token == "" {
		return nil, nil, fmt.Errorf("bot token is required")
	}

	bot, err := telego.NewBot(cfg.Bot.Token, telego.WithLogger(telegoLogger{}))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	botUser, err := bot.GetMe(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get bot info: %w", err)
	}
	logger.Infof("Authorized on account %s", botUser.Username)

	setLocalizedCommands(ctx, bot, cfg.Bot.Language)

	var (
		bh     *th.BotHandler
		server *WebhookServer
	)
	switch cfg.Bot.Mode {
	case "webhook":
		bh, server, err = SetupWebhook(ctx, bot, cfg.Bot.Webhook, webhookSecret(cfg.Bot.Token))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to setup webhook: %w", err)
		}
	default:
		bh, err = SetupLongPolling(ctx, bot)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to setup long polling: %w", err)
		}
	}

	return &BotService{
		Bot:      bot,
		Handler:  bh,
		Username: botUser.Username,
	}, server, nil
}

// webhookSecret derives the X-Telegram-Bot-Api-Secret-Token value from the
// bot token. Telegram only accepts A-Z, a-z, 0-9, _ and - in it.
func webhookSecret(token string) string {
	tail := token
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	secret := []byte("secure_webhook_token_")
	for i := 0; i < len(tail); i++ {
		c := tail[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' {
			secret = append(secret, c)
		}
	}
	return string(secret)
}

// SetupLongPolling drops any webhook and receives updates by polling.
func SetupLongPolling(ctx context.Context, bot *telego.Bot) (*th.BotHandler, error) {
	if err := bot.DeleteWebhook(ctx, &telego.DeleteWebhookParams{}); err != nil {
		return nil, fmt.Errorf("failed to delete existing webhook: %w", err)
	}

	updates, err := bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get updates channel: %w", err)
	}

	bh, err := th.NewBotHandler(bot, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot handler: %w", err)
	}
	logger.Infof("Receiving updates by long polling")
	return bh, nil
}

// commandKeys is the menu shown to users, in display order.
var commandKeys = []struct {
	Command string
	DescKey string
}{
	{Command: "start", DescKey: "cmd_desc_start"},
	{Command: string(models.CategoryWebSupport), DescKey: "cmd_desc_websupport"},
	{Command: string(models.CategoryAdvertise), DescKey: "cmd_desc_advertise"},
	{Command: string(models.CategoryReportLink), DescKey: "cmd_desc_reportlink"},
	{Command: "end", DescKey: "cmd_desc_end"},
}

func menuCommands(lang string) []telego.BotCommand {
	commands := make([]telego.BotCommand, 0, len(commandKeys))
	for _, cmd := range commandKeys {
		commands = append(commands, telego.BotCommand{
			Command:     cmd.Command,
			Description: models.GetTranslation(lang, cmd.DescKey),
		})
	}
	return commands
}

// setLocalizedCommands sets the command menu for every supported language,
// and the default menu in the configured one.
func setLocalizedCommands(ctx context.Context, bot *telego.Bot, defaultLang string) {
	for _, lang := range []string{models.LangIndonesian, models.LangEnglish} {
		err := bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{
			Commands:     menuCommands(lang),
			LanguageCode: lang,
		})
		if err != nil {
			logger.Warningf("Failed to set bot commands for %s: %v", lang, err)
		}
	}

	err := bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{
		Commands: menuCommands(defaultLang),
	})
	if err != nil {
		logger.Warningf("Failed to set default bot commands: %v", err)
	}
}
