package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nohumanman/descenders-modding/internal/dependencies/clock"
	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/registry"
)

const handshakeTimeout = 10 * time.Second

// TimeSubmitter stores runs finished by connected players
type TimeSubmitter interface {
	Submit(ctx context.Context, rec *model.TimeRecord) (*model.TimeRecord, error)
}

// Gateway accepts game client connections and keeps the registry in step
// with them
type Gateway struct {
	registry *registry.Registry
	times    TimeSubmitter
	clock    clock.Clock
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewGateway creates a new Gateway
func NewGateway(reg *registry.Registry, times TimeSubmitter, clock clock.Clock, logger *slog.Logger) *Gateway {
	return &Gateway{
		registry: reg,
		times:    times,
		clock:    clock,
		logger:   logger.With(slog.String("component", "gateway")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Game clients are not browsers and send no Origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and runs the connection until it closes
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := newClient(conn)
	player, err := g.handshake(c)
	if err != nil {
		g.logger.Warn("handshake rejected",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()),
		)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid handshake"),
			time.Now().Add(writeWait))
		c.Close()
		return
	}

	if prev, replaced := g.registry.Add(player); replaced {
		if stale, ok := prev.Conn.(*client); ok {
			stale.Close()
		}
	}

	go c.writePump()
	_ = c.Send(r.Context(), verbReady)

	g.readPump(c, player)
}

func (g *Gateway) handshake(c *client) (*model.Player, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	msgType, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidHandshake, err)
	}
	if msgType != websocket.TextMessage {
		return nil, fmt.Errorf("%w: expected text frame", model.ErrInvalidHandshake)
	}
	h, err := parseHello(string(data))
	if err != nil {
		return nil, err
	}
	_ = c.conn.SetReadDeadline(time.Time{})

	player := model.NewPlayer(h.ID, h.DisplayName, c, g.clock.Now())
	player.SetVersion(h.Version)
	return player, nil
}

func (g *Gateway) readPump(c *client, player *model.Player) {
	defer func() {
		c.Close()
		g.registry.Detach(player)
	}()

	ctx := context.Background()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, net.ErrClosed) {
				g.logger.Debug("connection read ended",
					slog.String("player_id", string(player.ID)),
					slog.String("error", err.Error()),
				)
			}
			return
		}
		if err := g.handleEvent(ctx, player, string(data)); err != nil {
			g.logger.Warn("event ignored",
				slog.String("player_id", string(player.ID)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// handleEvent applies one gameplay frame to the player
func (g *Gateway) handleEvent(ctx context.Context, player *model.Player, frame string) error {
	verb, args := splitFrame(frame)
	switch verb {
	case verbRep:
		if len(args) != 1 {
			return fmt.Errorf("malformed %s frame", verb)
		}
		rep, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("parse reputation: %w", err)
		}
		player.SetReputation(rep)
	case verbWorld:
		if len(args) != 1 {
			return fmt.Errorf("malformed %s frame", verb)
		}
		player.SetWorldName(args[0])
	case verbTrick:
		if len(args) != 1 {
			return fmt.Errorf("malformed %s frame", verb)
		}
		player.SetLastTrick(args[0])
	case verbBike:
		if len(args) != 1 {
			return fmt.Errorf("malformed %s frame", verb)
		}
		bike, ok := model.ParseBikeType(args[0])
		if !ok {
			return fmt.Errorf("unknown bike type %q", args[0])
		}
		player.SetBikeType(bike)
	case verbTrailStart:
		if len(args) != 2 {
			return fmt.Errorf("malformed %s frame", verb)
		}
		speed, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("parse starting speed: %w", err)
		}
		player.StartTrail(args[0], g.clock.Now(), speed)
	case verbTrailEnd:
		if len(args) != 2 {
			return fmt.Errorf("malformed %s frame", verb)
		}
		seconds, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("parse total time: %w", err)
		}
		return g.finishTrail(ctx, player, args[0], seconds)
	default:
		return fmt.Errorf("unknown event %q", verb)
	}
	return nil
}

func (g *Gateway) finishTrail(ctx context.Context, player *model.Player, trail string, seconds float64) error {
	started := player.FinishTrail(trail, seconds)
	state := player.State()

	_, err := g.times.Submit(ctx, &model.TimeRecord{
		PlayerID:      player.ID,
		PlayerName:    player.DisplayName,
		TrailName:     trail,
		WorldName:     state.WorldName,
		TotalTime:     seconds,
		BikeType:      state.BikeType,
		StartingSpeed: started.StartingSpeed,
		Version:       state.Version,
	})
	if err != nil {
		return fmt.Errorf("submit time: %w", err)
	}
	return nil
}
