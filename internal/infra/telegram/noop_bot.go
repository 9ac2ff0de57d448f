package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-group-subscription/internal/domain/ports/adapter"
)

var _ adapter.GroupAccess = (*NoopGroupAccess)(nil)

// NoopGroupAccess logs instead of touching Telegram. Dev mode only.
type NoopGroupAccess struct {
	log *zerolog.Logger
}

func NewNoopGroupAccess(logger *zerolog.Logger) *NoopGroupAccess {
	compLog := logger.With().Str("component", "NoopGroupAccess").Logger()
	return &NoopGroupAccess{log: &compLog}
}

func (g *NoopGroupAccess) RevokeAccess(ctx context.Context, userID int64) error {
	g.log.Info().Int64("user_id", userID).Msg("noop: revoke access")
	return nil
}

func (g *NoopGroupAccess) SendInviteLink(ctx context.Context, userID int64) error {
	g.log.Info().Int64("user_id", userID).Msg("noop: send invite link")
	return nil
}

func (g *NoopGroupAccess) NotifyUser(ctx context.Context, userID int64, text string) error {
	g.log.Info().Int64("user_id", userID).Str("text", text).Msg("noop: notify user")
	return nil
}
