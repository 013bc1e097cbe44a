// Package server runs the gateway's HTTP listener.
//
//	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	g.Go(srv.Run(ctx, app.Handler()))
//
// Start binds before serving, so a busy port fails fast. Cancelling the
// context drains in-flight requests for up to ShutdownTimeout. A Server is
// single use.
package server
