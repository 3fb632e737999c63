package loan

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/kunzatt/bookiki-sub000/model"
	bookhistorysvc "github.com/kunzatt/bookiki-sub000/service/bookhistory"
	brs "github.com/kunzatt/bookiki-sub000/service/bookreturn"
	bs "github.com/kunzatt/bookiki-sub000/service/borrow"
	rankingsvc "github.com/kunzatt/bookiki-sub000/service/ranking"
)

type Controller struct {
	Borrow  bs.Service
	Return  brs.Service
	History bookhistorysvc.Service
	Ranking rankingsvc.Service
	V       *validator.Validate
	Log     *slog.Logger
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == string(model.RoleAdmin)
}

// POST /v1/borrows
func (h *Controller) CreateBorrow(c echo.Context) error {
	var req BorrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Borrow.Borrow(c.Request().Context(), uid, req.BookItemID)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book item not found"})
		case bs.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		case bs.ErrNotAvailable:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book already borrowed"})
		case bs.ErrNotActive:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "user is blocked from borrowing"})
		case bs.ErrLimitExceeded:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "borrow limit reached"})
		default:
			h.Log.Error("borrow", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /v1/returns/scan
func (h *Controller) ScanReturn(c echo.Context) error {
	var req brs.ScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	out, err := h.Return.ProcessScan(c.Request().Context(), req)
	if err != nil {
		if brs.Code(err) == brs.ErrCameraError {
			return c.JSON(http.StatusConflict, echo.Map{"message": "scanner reported a device error"})
		}
		h.Log.Error("return scan", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/histories/my
func (h *Controller) MyHistory(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	f, err := historyFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	rows, err := h.History.UserHistory(c.Request().Context(), uid, f)
	if err != nil {
		h.Log.Error("user history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/histories/current
func (h *Controller) CurrentBorrows(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	overdueOnly := c.QueryParam("overdue") == "true"
	rows, err := h.History.CurrentBorrows(c.Request().Context(), uid, overdueOnly)
	if err != nil {
		h.Log.Error("current borrows", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/histories  (admin)
func (h *Controller) AdminHistory(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	f, err := historyFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	if v := c.QueryParam("user_name"); v != "" {
		f.UserName = &v
	}
	if v := c.QueryParam("company_id"); v != "" {
		f.CompanyID = &v
	}
	rows, err := h.History.AdminSearch(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("admin history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/rankings
func (h *Controller) Rankings(c echo.Context) error {
	rows, err := h.Ranking.Top(c.Request().Context())
	if err != nil {
		h.Log.Error("ranking", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	// An empty ranking window is a valid result.
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func historyFilter(c echo.Context) (model.HistoryFilter, error) {
	f := model.HistoryFilter{
		From: time.Now().AddDate(-1, 0, 0),
		To:   time.Now(),
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, err
		}
		f.From = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, err
		}
		f.To = t.AddDate(0, 0, 1)
	}
	if v := c.QueryParam("overdue"); v != "" {
		b := v == "true"
		f.Overdue = &b
	}
	if v := c.QueryParam("page"); v != "" {
		n, _ := strconv.Atoi(v)
		f.Page = n
	}
	if v := c.QueryParam("size"); v != "" {
		n, _ := strconv.Atoi(v)
		f.Size = n
	}
	return f, nil
}
