package qna

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/kunzatt/bookiki-sub000/model"
	qs "github.com/kunzatt/bookiki-sub000/service/qna"
)

type Controller struct {
	Svc qs.Service
	V   *validator.Validate
	Log *slog.Logger
}

type CreateQnaReq struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// POST /v1/qna
func (h *Controller) Create(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	var req CreateQnaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	q, err := h.Svc.Create(c.Request().Context(), uid, req.Title, req.Content)
	if err != nil {
		h.Log.Error("qna create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, q)
}

// GET /v1/qna/my
func (h *Controller) Mine(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	list, err := h.Svc.Mine(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("qna list mine", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, list)
}

// GET /v1/qna  (admin)
func (h *Controller) All(c echo.Context) error {
	role, _ := c.Get("role").(string)
	if role != string(model.RoleAdmin) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	list, err := h.Svc.All(c.Request().Context(), page, size)
	if err != nil {
		h.Log.Error("qna list all", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, list)
}
