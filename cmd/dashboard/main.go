// Command dashboard serves the account pages and the user dashboard, keeping
// the auth session in cookies that are refreshed on every request.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrymomot/supakit/pkg/config"
	"github.com/dmitrymomot/supakit/pkg/cookie"
	"github.com/dmitrymomot/supakit/pkg/httpserver"
	"github.com/dmitrymomot/supakit/pkg/logger"
	"github.com/dmitrymomot/supakit/pkg/requestid"
	"github.com/dmitrymomot/supakit/pkg/session"
	"github.com/dmitrymomot/supakit/pkg/supabase"

	"github.com/dmitrymomot/supakit/modules/account"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Name     string `env:"APP_NAME" envDefault:"supakit-dashboard"`
	LogLevel string `env:"LOG_LEVEL"`
}

func main() {
	app := config.MustLoad[appConfig]()

	logOpts := []logger.Option{
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor(), session.LoggerExtractor()),
	}
	if app.LogLevel != "" {
		logOpts = append(logOpts, logger.WithLevelName(app.LogLevel))
	}
	log := logger.New(logOpts...)

	if err := run(context.Background(), log); err != nil {
		log.Error("dashboard stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	supaCfg, err := config.Load[supabase.Config]()
	if err != nil {
		return err
	}
	if err := supaCfg.Validate(); err != nil {
		return err
	}
	cookieCfg, err := config.Load[cookie.Config]()
	if err != nil {
		return err
	}
	sessionCfg, err := config.Load[session.Config]()
	if err != nil {
		return err
	}
	accountCfg, err := config.Load[account.Config]()
	if err != nil {
		return err
	}
	serverCfg, err := config.Load[httpserver.Config]()
	if err != nil {
		return err
	}

	router, err := newRouter(deps{
		log:      log,
		supabase: supaCfg,
		cookies:  cookieCfg.Options(),
		session:  sessionCfg,
		account:  accountCfg,
	})
	if err != nil {
		return err
	}

	log.Info("starting dashboard", slog.String("auth_url", supaCfg.URL), slog.String("addr", serverCfg.Addr))
	return httpserver.New(serverCfg, httpserver.WithLogger(log)).Run(ctx, router)
}
