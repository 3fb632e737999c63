package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/kunzatt/bookiki-sub000/app/echoServer/controller/auth"
	"github.com/kunzatt/bookiki-sub000/app/echoServer/controller/book"
	"github.com/kunzatt/bookiki-sub000/app/echoServer/controller/loan"
	"github.com/kunzatt/bookiki-sub000/app/echoServer/controller/notification"
	"github.com/kunzatt/bookiki-sub000/app/echoServer/controller/policy"
	"github.com/kunzatt/bookiki-sub000/app/echoServer/controller/qna"
	"github.com/kunzatt/bookiki-sub000/app/echoServer/controller/user"
)

type C struct {
	Auth         *auth.Controller
	Book         *book.Controller
	Loan         *loan.Controller
	Policy       *policy.Controller
	Notification *notification.Controller
	Qna          *qna.Controller
	User         *user.Controller
	JWTSecret    string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id + role extraction
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tokenObj := ctx.Get("user")
			if tokenObj == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			claims, ok := tokenObj.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", int64(sub))

			if role, ok := claims["role"].(string); ok {
				ctx.Set("role", role)
			}
			return next(ctx)
		}
	})

	// Books
	auth.GET("/books", c.Book.List)
	auth.GET("/books/:id", c.Book.Detail)
	// Admin endpoints
	auth.POST("/books", c.Book.Create)
	auth.POST("/books/:id/copies", c.Book.AddCopies)
	auth.PATCH("/books/:id/category", c.Book.UpdateCategory)
	auth.DELETE("/book-items/:id", c.Book.RemoveItem)

	// Loans
	auth.POST("/borrows", c.Loan.CreateBorrow)
	auth.POST("/returns/scan", c.Loan.ScanReturn)
	auth.GET("/histories/my", c.Loan.MyHistory)
	auth.GET("/histories/current", c.Loan.CurrentBorrows)
	auth.GET("/histories", c.Loan.AdminHistory)
	auth.GET("/rankings", c.Loan.Rankings)

	// Loan policy
	auth.GET("/loan-policies", c.Policy.Current)
	auth.PUT("/loan-policies", c.Policy.Update)
	auth.PATCH("/loan-policies/book", c.Policy.UpdateMaxBooks)
	auth.PATCH("/loan-policies/period", c.Policy.UpdateLoanPeriod)

	// Notifications
	auth.GET("/notifications", c.Notification.List)
	auth.PATCH("/notifications/:id/read", c.Notification.MarkRead)
	auth.DELETE("/notifications/:id", c.Notification.Delete)

	// Q&A
	auth.POST("/qna", c.Qna.Create)
	auth.GET("/qna/my", c.Qna.Mine)
	auth.GET("/qna", c.Qna.All)

	// Profile
	auth.GET("/users/me", c.User.Me)
	auth.PATCH("/users/me/name", c.User.UpdateName)
	auth.PATCH("/users/me/password", c.User.ChangePassword)
}
