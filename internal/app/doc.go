// Package app wires the exploration server: configuration, logging,
// OpenTelemetry, the loader and conversion pipeline, the services and the
// HTTP router.
//
// # Lifecycle
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return app.Run(ctx, "")
//
// Run starts listening before the dataset is ready. Until the recipes have
// been converted, /healthz answers 503 with status "loading" and queries
// answer 409. Cancelling ctx shuts the server down within
// Server.ShutdownTimeout and flushes telemetry.
package app
