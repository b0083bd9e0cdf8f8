package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/registry"
)

const setBikePrefix = "SET_BIKE"

// bikeCodeIndex is the position of the bike digit in "SET_BIKE|<digit>"
const bikeCodeIndex = 9

// Service forwards operator orders to connected game clients
type Service struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// New creates a new command Service
func New(reg *registry.Registry, logger *slog.Logger) *Service {
	return &Service{
		registry: reg,
		logger:   logger.With(slog.String("component", "command-service")),
	}
}

// Send delivers order to the player's live connection.
// A successful SET_BIKE order also updates the player's recorded bike.
func (s *Service) Send(ctx context.Context, playerID model.PlayerID, order string) error {
	if strings.TrimSpace(order) == "" {
		return model.ErrInvalidCommand
	}

	player, err := s.registry.FindByID(playerID)
	if err != nil {
		return err
	}
	if player.Conn == nil {
		return model.ErrPlayerDisconnected
	}

	if err := player.Conn.Send(ctx, order); err != nil {
		s.logger.Warn("command delivery failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %v", model.ErrCommandDeliveryFailed, err)
	}

	if strings.HasPrefix(order, setBikePrefix) && len(order) > bikeCodeIndex {
		if bike, ok := model.BikeTypeFromCode(order[bikeCodeIndex : bikeCodeIndex+1]); ok {
			player.SetBikeType(bike)
		}
	}

	s.logger.Info("command sent",
		slog.String("player_id", string(playerID)),
		slog.String("order", order),
	)
	return nil
}
