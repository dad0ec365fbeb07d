package handler

import (
	"context"
	"net/http"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
)

type AvailabilityService interface {
	GetAvailability(ctx context.Context, p models.Principal) (types.Availability, error)
	ToggleAvailability(ctx context.Context, p models.Principal) (types.Availability, error)
}

type User struct {
	service AvailabilityService
	l       logger.Logger
}

func NewUser(service AvailabilityService, l logger.Logger) *User {
	return &User{
		service: service,
		l:       l,
	}
}

// GetAvailability godoc
// @Summary      Driver availability
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /users/availability [get]
func (h *User) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_availability")

	availability, err := h.service.GetAvailability(ctx, models.PrincipalFromContext(ctx))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get availability", err)
		serviceErrorResponse(w, err)
		return
	}

	h.respond(ctx, w, availability)
}

// ToggleAvailability godoc
// @Summary      Toggle driver availability
// @Description  Flips between available and unavailable
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /users/availability [patch]
func (h *User) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "toggle_availability")

	availability, err := h.service.ToggleAvailability(ctx, models.PrincipalFromContext(ctx))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to toggle availability", err)
		serviceErrorResponse(w, err)
		return
	}

	h.respond(ctx, w, availability)
}

func (h *User) respond(ctx context.Context, w http.ResponseWriter, availability types.Availability) {
	response := envelope{"availability": availability}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
