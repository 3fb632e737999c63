package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	us "github.com/kunzatt/bookiki-sub000/service/user"
)

type Controller struct {
	Svc us.Service
	V   *validator.Validate
	Log *slog.Logger
}

type UpdateNameReq struct {
	Name string `json:"name" validate:"required"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// GET /v1/users/me
func (h *Controller) Me(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	u, err := h.Svc.Profile(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, us.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		h.Log.Error("profile read", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, u)
}

// PATCH /v1/users/me/name
func (h *Controller) UpdateName(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	var req UpdateNameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	if err := h.Svc.UpdateName(c.Request().Context(), uid, req.Name); err != nil {
		if errors.Is(err, us.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		h.Log.Error("name update", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "name updated"})
}

// PATCH /v1/users/me/password
func (h *Controller) ChangePassword(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	var req ChangePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	if err := h.Svc.ChangePassword(c.Request().Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, us.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		case errors.Is(err, us.ErrWrongOldPwd):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "old password does not match"})
		}
		h.Log.Error("password change", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
