// Package api implements the fontsoundd HTTP REST API.
//
// This package provides:
//   - Endpoints for the fontsound lifecycle and attribute protocol
//   - Bank capture, restore, export and import
//   - Prometheus exposition of device metrics
//   - WebSocket stream of device events (Hub)
//   - Middleware stack (request ID, logging, recovery, body limit)
//
// All routes live under /api/v1. Device errors map onto HTTP statuses
// and the response body carries the numeric AL error code:
//
//	invalid_name      -> 404 not_found
//	invalid_value     -> 400 validation_error
//	invalid_enum      -> 400 bad_request
//	invalid_operation -> 409 conflict
//	out_of_memory     -> 507 insufficient_storage
package api
