// Package httpserver runs the dashboard's HTTP server with graceful shutdown.
//
// Run listens on Config.Addr, serves until the context is cancelled or the
// process gets SIGINT/SIGTERM, and then shuts down within
// Config.ShutdownTimeout. The serve loop and the shutdown watcher share an
// errgroup, so a listener failure also ends Run.
//
//	cfg := config.MustLoad[httpserver.Config]()
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// HealthHandler serves liveness and readiness checks.
package httpserver
