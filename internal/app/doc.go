// Package app wires the DSS configuration service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load and validate configuration
//	2. Initialize logging and OpenTelemetry (Prometheus registry, tracer)
//	3. Create the run manager, template store and WebSocket hub
//	4. Create the run and health services
//	5. Build the chi router and its middleware chain
//	6. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(nil, nil)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Run serves until the context is cancelled or SIGINT/SIGTERM arrives, then
// drains HTTP requests, closes WebSocket clients and flushes telemetry.
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
