package policy

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/kunzatt/bookiki-sub000/model"
	ps "github.com/kunzatt/bookiki-sub000/service/policy"
)

type Controller struct {
	Svc ps.Service
	V   *validator.Validate
	Log *slog.Logger
}

type UpdatePolicyReq struct {
	MaxBooks   int `json:"max_books" validate:"required"`
	LoanPeriod int `json:"loan_period" validate:"required"`
}

type MaxBooksReq struct {
	MaxBooks int `json:"max_books" validate:"required"`
}

type LoanPeriodReq struct {
	LoanPeriod int `json:"loan_period" validate:"required"`
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == string(model.RoleAdmin)
}

// GET /v1/loan-policies
func (h *Controller) Current(c echo.Context) error {
	p, err := h.Svc.Current(c.Request().Context())
	if err != nil {
		h.Log.Error("policy read", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, p)
}

// PUT /v1/loan-policies  (admin)
func (h *Controller) Update(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req UpdatePolicyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	p, err := h.Svc.Update(c.Request().Context(), req.MaxBooks, req.LoanPeriod)
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// PATCH /v1/loan-policies/book  (admin)
func (h *Controller) UpdateMaxBooks(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req MaxBooksReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	p, err := h.Svc.UpdateMaxBooks(c.Request().Context(), req.MaxBooks)
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// PATCH /v1/loan-policies/period  (admin)
func (h *Controller) UpdateLoanPeriod(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req LoanPeriodReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	p, err := h.Svc.UpdateLoanPeriod(c.Request().Context(), req.LoanPeriod)
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Controller) writeErr(c echo.Context, err error) error {
	switch ps.Code(err) {
	case ps.ErrInvalidMaxBooks:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "max_books must be a positive integer"})
	case ps.ErrInvalidLoanPeriod:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "loan_period must be a positive integer"})
	}
	if errors.Is(err, sql.ErrNoRows) {
		h.Log.Error("loan policy row missing")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "loan policy not configured"})
	}
	h.Log.Error("policy update", "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}
