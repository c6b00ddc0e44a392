// Package handler implements the admin HTTP API:
//
//   - GET /healthz: liveness with connection and key counts
//   - GET, PUT /admin/log-level: read or change the runtime log level
//
// The router in the parent package mounts /metrics next to these.
package handler
