package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) CustomerConversation(c echo.Context) error {
	customerID, err := pathID(c, "customerID")
	if err != nil {
		return err
	}
	entries, err := h.backend.CustomerConversation(c.Request().Context(), customerID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries})
}

func (h *Handler) ConversationSummaries(c echo.Context) error {
	summaries, err := h.backend.ConversationSummaries(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": summaries})
}

func (h *Handler) VenueFeedback(c echo.Context) error {
	venueID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.backend.VenueFeedback(c.Request().Context(), venueID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries})
}
