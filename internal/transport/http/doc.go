// Package http implements the HTTP handlers of the DSS configuration service.
// Handlers stay thin: they parse the request, call a service and format the
// response. All business logic lives in the services package.
//
// # Endpoints
//
//	POST /api/v1/runs           upload a survey workbook, JSON run report
//	POST /api/v1/runs/archive   upload a survey workbook, zip of all outputs
//	GET  /api/v1/runs/defaults  worksheet, column and template defaults
//	GET  /api/v1/templates      available configuration templates
//	GET  /healthz /readyz /livez /version
//
// Uploads are multipart/form-data with the workbook in the "file" field. The
// optional form fields worksheet, dss_column, cell_column, exclude_value,
// variant, template and archive override the configured defaults for one run.
//
// # Error Handling
//
// Every error is rendered as RFC 7807 Problem Details by the errors package:
//
//	{
//	    "type": "/errors/run/source-not-found",
//	    "title": "Worksheet Not Found",
//	    "status": 422,
//	    "detail": "worksheet \"5G Info\" not found",
//	    "instance": "/api/v1/runs",
//	    "run_id": "3f0c..."
//	}
//
// A failed run still carries its run_id and collected log lines as problem
// extensions.
package http
