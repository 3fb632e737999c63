// Package main Bookiki API.
//
// @title           Bookiki API
// @version         1.0
// @description     Corporate library service (catalog, loans, returns, notifications, Q&A).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/kunzatt/bookiki-sub000/app/echoServer"
	authctrl "github.com/kunzatt/bookiki-sub000/app/echoServer/controller/auth"
	bookctrl "github.com/kunzatt/bookiki-sub000/app/echoServer/controller/book"
	loanctrl "github.com/kunzatt/bookiki-sub000/app/echoServer/controller/loan"
	notifctrl "github.com/kunzatt/bookiki-sub000/app/echoServer/controller/notification"
	policyctrl "github.com/kunzatt/bookiki-sub000/app/echoServer/controller/policy"
	qnactrl "github.com/kunzatt/bookiki-sub000/app/echoServer/controller/qna"
	userctrl "github.com/kunzatt/bookiki-sub000/app/echoServer/controller/user"
	"github.com/kunzatt/bookiki-sub000/app/echoServer/validation"
	"github.com/kunzatt/bookiki-sub000/app/scheduler"
	"github.com/kunzatt/bookiki-sub000/config"
	bookrepo "github.com/kunzatt/bookiki-sub000/repository/book"
	historyrepo "github.com/kunzatt/bookiki-sub000/repository/history"
	notificationrepo "github.com/kunzatt/bookiki-sub000/repository/notification"
	policyrepo "github.com/kunzatt/bookiki-sub000/repository/policy"
	qnarepo "github.com/kunzatt/bookiki-sub000/repository/qna"
	userrepo "github.com/kunzatt/bookiki-sub000/repository/user"
	authsvc "github.com/kunzatt/bookiki-sub000/service/auth"
	booksvc "github.com/kunzatt/bookiki-sub000/service/book"
	bookhistorysvc "github.com/kunzatt/bookiki-sub000/service/bookhistory"
	bookreturnsvc "github.com/kunzatt/bookiki-sub000/service/bookreturn"
	borrowsvc "github.com/kunzatt/bookiki-sub000/service/borrow"
	notificationsvc "github.com/kunzatt/bookiki-sub000/service/notification"
	overduesvc "github.com/kunzatt/bookiki-sub000/service/overdue"
	policysvc "github.com/kunzatt/bookiki-sub000/service/policy"
	qnasvc "github.com/kunzatt/bookiki-sub000/service/qna"
	rankingsvc "github.com/kunzatt/bookiki-sub000/service/ranking"
	usersvc "github.com/kunzatt/bookiki-sub000/service/user"
	"github.com/kunzatt/bookiki-sub000/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sqlx.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis: ranking cache + scanner OCR state
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	// repos
	br := bookrepo.New(db)
	hr := historyrepo.New(db)
	ur := userrepo.New(db)
	pr := policyrepo.New(db)
	nr := notificationrepo.New(db)
	qr := qnarepo.New(db)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	us := usersvc.New(ur)
	bs := booksvc.New(br)
	hs := bookhistorysvc.New(hr, pr)
	ns := notificationsvc.New(nr, ur, hs, log)
	bws := borrowsvc.New(hr, pr, ns, log)
	rts := bookreturnsvc.New(hr, br, bookreturnsvc.NewRedisFragmentStore(rdb), ns, log)
	ods := overduesvc.New(hr, pr, ns, log)
	rankCache := rankingsvc.NewRedisCache(rdb, time.Duration(cfg.RankingCacheTTL)*time.Second, log)
	rks := rankingsvc.New(hr, rankCache, log)
	ps := policysvc.New(pr)
	qs := qnasvc.New(qr, ns)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	loanC := &loanctrl.Controller{Borrow: bws, Return: rts, History: hs, Ranking: rks, V: v, Log: log}
	policyC := &policyctrl.Controller{Svc: ps, V: v, Log: log}
	notifC := &notifctrl.Controller{Svc: ns, Log: log}
	qnaC := &qnactrl.Controller{Svc: qs, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:         authC,
		Book:         bookC,
		Loan:         loanC,
		Policy:       policyC,
		Notification: notifC,
		Qna:          qnaC,
		User:         userC,

		JWTSecret: cfg.JWTSecret,
	})

	// daily jobs
	sched := scheduler.New(cfg.SweepHour, log)
	sched.Add("overdue-sweep", ods.Sweep)
	sched.Add("return-deadline", ns.ReturnDeadline)
	sched.Start(ctx)
	defer sched.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
