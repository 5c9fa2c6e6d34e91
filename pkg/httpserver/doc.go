// Package httpserver runs the storefront HTTP server with graceful shutdown.
//
// Run opens the listener, serves until the context is cancelled or SIGINT or
// SIGTERM arrives, then drains in-flight requests within the shutdown timeout:
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler serve health endpoints; readiness
// runs named dependency checks such as the Redis ping.
package httpserver
