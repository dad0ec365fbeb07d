package wshandler

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hamza-safwan/mini-ride-booking/internal/adapter/http/ws/dto"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
	"github.com/hamza-safwan/mini-ride-booking/pkg/metrics"
	"github.com/hamza-safwan/mini-ride-booking/pkg/validator"
	ws "github.com/hamza-safwan/mini-ride-booking/pkg/wsHub"
)

type (
	Authenticator interface {
		Authenticate(ctx context.Context, token string) (models.Principal, error)
	}

	Rooms interface {
		Join(p models.Principal, client ws.Client) error
		Leave(connID string) error
	}

	LocationRelay interface {
		Relay(ctx context.Context, sender models.Principal, rideID uuid.UUID, pos models.Position) (models.LocationSample, error)
		Replay(ctx context.Context, p models.Principal, client ws.Client)
	}
)

// Handler upgrades authenticated requests into persistent connections.
type Handler struct {
	auth     Authenticator
	rooms    Rooms
	relay    LocationRelay
	opts     ws.Options
	upgrader websocket.Upgrader
	l        logger.Logger
}

func New(auth Authenticator, rooms Rooms, relay LocationRelay, opts ws.Options, l logger.Logger) *Handler {
	return &Handler{
		auth:  auth,
		rooms: rooms,
		relay: relay,
		opts:  opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		l: l,
	}
}

// ServeWS godoc
// @Summary      Persistent connection
// @Description  Upgrades to a WebSocket. Authenticate with the Authorization header or the token query parameter.
// @Tags         WebSocket
// @Param        token  query  string  false  "Access token"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /ws [get]
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_connect")

	p, err := h.principal(ctx, r)
	if err != nil {
		h.l.Warn(ctx, "websocket authentication failed", "error", err.Error())
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	ctx = wrap.WithUserID(ctx, p.ID.String())

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.l.Warn(ctx, "websocket upgrade failed", "error", err.Error())
		return
	}

	conn := ws.NewConn(uuid.NewString(), raw, h.opts)
	ctx = wrap.WithConnID(ctx, conn.ID())

	if err := h.rooms.Join(p, conn); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to join rooms", err)
		conn.Close()
		return
	}

	gauge := metrics.WebSocketConnectionsGauge.WithLabelValues(p.Role.String())
	gauge.Inc()
	defer func() {
		gauge.Dec()
		if err := h.rooms.Leave(conn.ID()); err != nil {
			h.l.Debug(ctx, "connection already left", "error", err.Error())
		}
		conn.Close()
		h.l.Info(ctx, "websocket disconnected")
	}()

	h.l.Info(ctx, "websocket connected", "role", p.Role)

	go func() {
		if err := conn.WritePump(); err != nil {
			h.l.Debug(ctx, "write pump stopped", "error", err.Error())
		}
	}()

	h.relay.Replay(ctx, p, conn)

	if err := conn.Listen(func(msg []byte) {
		h.HandleMessage(ctx, p, conn, msg)
	}); err != nil {
		h.l.Debug(ctx, "read loop stopped", "error", err.Error())
	}
}

func (h *Handler) principal(ctx context.Context, r *http.Request) (models.Principal, error) {
	if p := models.PrincipalFromContext(ctx); !p.IsAnonymous() {
		return p, nil
	}

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		return models.Principal{}, fmt.Errorf("%w: token required", types.ErrUnauthorized)
	}
	return h.auth.Authenticate(ctx, token)
}

// HandleMessage serves one inbound frame. Failures are answered on conn
// and never close it.
func (h *Handler) HandleMessage(ctx context.Context, p models.Principal, conn ws.Client, raw []byte) {
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.reply(ctx, conn, types.Validationf("malformed message"), nil)
		return
	}

	switch env.Event {
	case types.EventLocationUpdate:
		h.locationUpdate(ctx, p, conn, env.Data)
	default:
		h.reply(ctx, conn, types.Validationf("unsupported event %q", env.Event), nil)
	}
}

func (h *Handler) locationUpdate(ctx context.Context, p models.Principal, conn ws.Client, data json.RawMessage) {
	ctx = wrap.WithAction(ctx, "ws_location_update")

	var req dto.LocationUpdateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.reply(ctx, conn, types.Validationf("location update needs ride_id and position"), nil)
		return
	}

	v := validator.New()
	if req.Validate(v); !v.Valid() {
		var rideID *uuid.UUID
		if req.RideID != uuid.Nil {
			rideID = &req.RideID
		}
		h.reply(ctx, conn, types.Validationf("%s", validationMessage(v.Errors)), rideID)
		return
	}

	if !p.IsDriver() {
		h.reply(ctx, conn, types.ErrRoleNotAllowed, &req.RideID)
		return
	}

	if _, err := h.relay.Relay(ctx, p, req.RideID, req.ToModel()); err != nil {
		h.reply(ctx, conn, err, &req.RideID)
	}
}

// validationMessage flattens field errors into one line, sorted by field.
func validationMessage(errs map[string]string) string {
	parts := make([]string, 0, len(errs))
	for _, field := range slices.Sorted(maps.Keys(errs)) {
		parts = append(parts, field+" "+errs[field])
	}
	return strings.Join(parts, "; ")
}

func (h *Handler) reply(ctx context.Context, conn ws.Client, err error, rideID *uuid.UUID) {
	h.l.Debug(ctx, "websocket request failed", "error", err.Error(), "kind", types.KindOf(err))
	if sendErr := errorResponse(conn, err, rideID); sendErr != nil {
		h.l.Warn(ctx, "failed to deliver error event", "error", sendErr.Error())
	}
}
