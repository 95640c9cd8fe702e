// Package services holds the business logic behind the HTTP and CLI
// surfaces.
//
// RunService turns one uploaded survey workbook into rendered configuration
// texts: it validates the run options, stages the upload in a scratch
// directory, loads the workbook and templates, executes the operations
// pipeline and packages the outputs. Every log record of the run is
// collected into the returned report and, when a publisher is attached,
// streamed to it as it happens.
//
// HealthService answers the liveness, readiness and version probes.
//
// Services take their dependencies through their constructors and never
// reach for globals, so tests can wire them with in-memory fixtures.
package services
