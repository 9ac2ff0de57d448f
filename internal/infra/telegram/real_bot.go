package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-group-subscription/internal/domain/ports/adapter"
)

// Ensure compile-time conformance
var _ adapter.GroupAccess = (*RealGroupAccess)(nil)

// RealGroupAccess manages membership of the restricted group through the
// Telegram Bot API.
type RealGroupAccess struct {
	bot        *tgbotapi.BotAPI
	groupID    int64
	inviteLink string
	log        *zerolog.Logger
}

func NewRealGroupAccess(token string, groupID int64, inviteLink string, logger *zerolog.Logger) (*RealGroupAccess, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	compLog := logger.With().Str("component", "GroupAccess").Logger()
	return &RealGroupAccess{
		bot:        bot,
		groupID:    groupID,
		inviteLink: inviteLink,
		log:        &compLog,
	}, nil
}

func (g *RealGroupAccess) RevokeAccess(ctx context.Context, userID int64) error {
	_, err := g.bot.Request(tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: g.groupID,
			UserID: userID,
		},
	})
	if err != nil {
		return fmt.Errorf("ban chat member: %w", err)
	}
	g.log.Info().Int64("user_id", userID).Msg("group access revoked")
	return nil
}

func (g *RealGroupAccess) SendInviteLink(ctx context.Context, userID int64) error {
	text := fmt.Sprintf(
		"Pagamento confirmado! Entre no grupo pelo link:\n%s",
		g.inviteLink,
	)
	return g.NotifyUser(ctx, userID, text)
}

func (g *RealGroupAccess) NotifyUser(ctx context.Context, userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := g.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
