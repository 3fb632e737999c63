package notification

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	ns "github.com/kunzatt/bookiki-sub000/service/notification"
)

type Controller struct {
	Svc ns.Service
	Log *slog.Logger
}

// GET /v1/notifications
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	list, err := h.Svc.List(c.Request().Context(), uid, page, size)
	if err != nil {
		h.Log.Error("notification list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, list)
}

// PATCH /v1/notifications/:id/read
func (h *Controller) MarkRead(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid notification id"})
	}
	if err := h.Svc.MarkRead(c.Request().Context(), uid, id); err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "notification marked as read"})
}

// DELETE /v1/notifications/:id
func (h *Controller) Delete(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid notification id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "notification deleted"})
}

func (h *Controller) writeErr(c echo.Context, err error) error {
	if ns.Code(err) == ns.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "notification not found"})
	}
	h.Log.Error("notification update", "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}
