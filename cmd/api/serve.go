package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	httpadp "loansyncro/internal/adapter/http"
	"loansyncro/internal/adapter/middleware"
	"loansyncro/internal/adapter/repository/gormrepo"
	"loansyncro/internal/config"
	"loansyncro/internal/domain/notification"
	"loansyncro/internal/infrastructure/auth"
	"loansyncro/internal/infrastructure/cache"
	"loansyncro/internal/infrastructure/db"
	"loansyncro/internal/infrastructure/events"
	"loansyncro/internal/usecase/account"
	"loansyncro/internal/usecase/loan"
	"loansyncro/internal/usecase/repayment"
)

const shutdownTimeout = 10 * time.Second

var (
	servePort    string
	serveMigrate bool
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if servePort != "" {
				cfg.AppPort = servePort
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (overrides APP_PORT)")
	cmd.Flags().BoolVar(&serveMigrate, "migrate", false, "create/upgrade tables before serving")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	gdb, err := openDB(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if serveMigrate {
		if err := gormrepo.Migrate(gdb); err != nil {
			return err
		}
		log.Printf("migrations applied")
	}

	var rdb *redis.Client
	var notifier notification.Publisher = events.LogPublisher{}
	if cfg.RedisAddr != "" {
		rdb, err = cache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		notifier = events.NewRedisPublisher(rdb, cfg.NotificationStream)
	} else {
		log.Printf("REDIS_ADDR not set: notifications go to the log, idempotency disabled")
	}

	loans := gormrepo.NewLoanRepository(gdb)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	accounts := account.NewUsecase(gormrepo.NewUserRepository(gdb), tokens, auth.NewBcryptHasher())
	txs := gormrepo.NewGormUoW(gdb)
	repayments := repayment.NewUsecase(loans, gormrepo.NewRepaymentRepository(gdb), txs, notifier)
	loanUC := loan.NewUsecase(loans, txs, notifier, repayments)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
			middleware.HeaderIdempotencyKey, middleware.HeaderRequestAt,
		},
	}))

	checks := []httpadp.Check{{Name: "database", Ping: sqlDB.PingContext}}
	var guarded []echo.MiddlewareFunc
	if rdb != nil {
		checks = append(checks, httpadp.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		guarded = append(guarded, middleware.Idempotency(rdb, cfg.IdempotencyTTL()))
	}

	httpadp.Register(e, httpadp.Handlers{
		Health:     httpadp.NewHandler(checks...),
		Accounts:   httpadp.NewAccountHandler(accounts),
		Loans:      httpadp.NewLoanHandler(loanUC),
		Repayments: httpadp.NewRepaymentHandler(repayments),
	}, middleware.Auth(tokens, accounts), guarded...)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		log.Printf("listening on %s (%s, db=%s)", addr, cfg.AppEnv, cfg.DBDriver)
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("shutting down...")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if !cfg.IsProduction() {
		level = logger.Info
	}
	return db.OpenGorm(cfg.DBDriver, cfg.DSN(), level)
}
