package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	statex "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/state"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/store"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/validate"
)

type openSessionRequest struct {
	Name  string   `json:"name"`
	Phone string   `json:"phone"`
	Email string   `json:"email"`
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
}

type messageRequest struct {
	Text string `json:"text"`
}

// OpenSession registers (or recognises) the guest by phone and starts a
// fresh conversation for them.
func (h *Handler) OpenSession(c echo.Context) error {
	var req openSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if !validate.IsValidPhone(req.Phone) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid phone number. Use a 10-digit Indian mobile number"})
	}
	if req.Email != "" && !validate.IsValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lat and lon must be given together"})
	}

	ctx := c.Request().Context()
	customer, err := h.backend.GetOrCreateCustomer(ctx, name, req.Phone, req.Email)
	if err != nil {
		return errorResponse(c, err)
	}

	profile := &statex.SessionProfile{
		CustomerID: customer.ID,
		Name:       customer.Name,
		Phone:      customer.Phone,
		Lat:        h.origin.Lat,
		Lon:        h.origin.Lon,
	}
	if req.Lat != nil {
		profile.Lat, profile.Lon = *req.Lat, *req.Lon
	}
	if _, err := h.sessions.Open(ctx, profile); err != nil {
		return errorResponse(c, err)
	}
	log.Info().Int64("customer_id", customer.ID).Msg("session opened")

	return c.JSON(http.StatusCreated, echo.Map{
		"customer_id": customer.ID,
		"name":        customer.Name,
		"phone":       customer.Phone,
		"lat":         profile.Lat,
		"lon":         profile.Lon,
	})
}

func (h *Handler) PostMessage(c echo.Context) error {
	customerID, err := pathID(c, "customerID")
	if err != nil {
		return err
	}
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	session, err := h.sessions.Get(ctx, customerID)
	if err != nil {
		return errorResponse(c, err)
	}
	result, err := session.HandleMessage(ctx, req.Text)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ResetSession(c echo.Context) error {
	customerID, err := pathID(c, "customerID")
	if err != nil {
		return err
	}
	session, err := h.sessions.Get(c.Request().Context(), customerID)
	if err != nil {
		return errorResponse(c, err)
	}
	session.Reset()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CloseSession(c echo.Context) error {
	customerID, err := pathID(c, "customerID")
	if err != nil {
		return err
	}
	if err := h.sessions.Close(c.Request().Context(), customerID); err != nil {
		return errorResponse(c, err)
	}
	log.Info().Int64("customer_id", customerID).Msg("session closed")
	return c.NoContent(http.StatusNoContent)
}

// PayReservation marks one of the guest's reservations as paid. No money
// moves; the flag only drives the UI.
func (h *Handler) PayReservation(c echo.Context) error {
	customerID, err := pathID(c, "customerID")
	if err != nil {
		return err
	}
	reservationID, err := pathID(c, "reservationID")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	r, err := h.backend.GetReservation(ctx, reservationID)
	if err != nil {
		return errorResponse(c, err)
	}
	if r.CustomerID != customerID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	if r.Status != store.StatusConfirmed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only confirmed reservations can be paid"})
	}
	if err := h.sessions.MarkPaid(ctx, customerID, reservationID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation_id": reservationID, "paid": true})
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, contractx.ErrSessionNotFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, contractx.ErrInvalidMessage),
		errors.Is(err, contractx.ErrValidation),
		errors.Is(err, store.ErrInvalidArgument):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
