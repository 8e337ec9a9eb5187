package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	console "github.com/opspulse/console"
	"github.com/opspulse/console/config"
)

type App struct {
	config *gconfig.Container[*config.BaseConfig]
	bunDB  *bun.DB
	auth   console.Authenticator
	auther *console.RouteAuthenticator
	repo   console.RepositoryManager
	srv    *fiber.App
	logger *glog.BaseLogger
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("console"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	if !cfg.Raw().GetAuth().IsProduction() {
		fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	addr := app.Config().GetServer().GetAddr()
	go func() {
		if err := app.srv.Listen(addr); err != nil {
			app.GetLogger("server").Error("server stopped", "error", err)
		}
	}()

	WaitExitSignal()

	if err := app.srv.Shutdown(); err != nil {
		app.GetLogger("server").Error("shutdown error", "error", err)
	}

	if app.bunDB != nil {
		app.bunDB.Close()
	}
}

// WithPersistence opens the database, registers the schema, and builds the
// repository manager.
func WithPersistence(ctx context.Context, app *App) error {
	pcfg := app.Config().GetPersistence()

	sqldb, err := sql.Open(sqliteshim.ShimName, pcfg.GetDSN())
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to open database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*console.Admin)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create admins table")
	}

	app.bunDB = db
	app.repo = console.NewRepositoryManager(db)

	return app.repo.Validate()
}

// WithHTTPServer builds the authenticator stack and mounts the routes.
func WithHTTPServer(ctx context.Context, app *App) error {
	acfg := app.Config().GetAuth()

	provider := console.NewAdminProvider(app.repo.Admins()).
		WithLogger(logAdapter{app.GetLogger("provider")})

	auth := console.NewAuthenticator(provider, acfg).
		WithLogger(logAdapter{app.GetLogger("auth")})
	app.auth = auth

	auther, err := console.NewHTTPAuthenticator(auth, acfg)
	if err != nil {
		return err
	}
	app.auther = auther.WithLogger(logAdapter{app.GetLogger("http")})

	srv := fiber.New(fiber.Config{
		AppName: "opspulse-console",
	})

	// the SPA sends the session cookie cross origin, so credentials must be
	// allowed and the origin pinned
	srv.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config().GetServer().GetClientOrigin(),
		AllowCredentials: true,
	}))

	srv.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authGroup := srv.Group("/auth")
	controller := console.RegisterAuthRoutes(authGroup,
		console.WithControllerRepo(app.repo),
		console.WithControllerAuther(app.auther),
		console.WithControllerLogger(logAdapter{app.GetLogger("controller")}),
	)

	protected := app.auther.ProtectedRoute(acfg, nil)
	authGroup.Get(controller.Routes.Me, protected, controller.Me)

	app.srv = srv
	return nil
}

func WaitExitSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(
		quit,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	return <-quit
}

// logAdapter bridges glog to the auth Logger interface.
type logAdapter struct {
	lgr glog.Logger
}

func (l logAdapter) Debug(format string, args ...any) { l.lgr.Debug(fmt.Sprintf(format, args...)) }
func (l logAdapter) Info(format string, args ...any)  { l.lgr.Info(fmt.Sprintf(format, args...)) }
func (l logAdapter) Warn(format string, args ...any)  { l.lgr.Warn(fmt.Sprintf(format, args...)) }
func (l logAdapter) Error(format string, args ...any) { l.lgr.Error(fmt.Sprintf(format, args...)) }
