// Package gateway serves the bestiary records API.
//
// # Overview
//
// The Gateway owns the HTTP server, the optional gRPC health server, the
// optional Tailscale node and the record store handle. A single store is
// opened at startup (OpenStore), seeded if empty, and shared by every
// request.
//
// # HTTP API
//
//	GET    /records                      all records
//	GET    /records/{id}                 one record, 404 if missing
//	GET    /records/category/{category}  case-insensitive match, 404 if empty
//	POST   /records                      201 + Location, 409 on id collision
//	PUT    /records/{id}                 partial update, echoes the body
//	DELETE /records/{id}                 204
//	GET    /health                       liveness, always "OK"
//	GET    /health/ready                 200 if the store pings, else 503
//	GET    /                             HTML overview
//
// Non-integer ids are rejected with 400. Errors are JSON objects of the
// form {"error": "..."}; 500 responses never include store details.
//
// Reads never fail outright. When the store errors during a read the
// response is the same as for "nothing there" but carries
//
//	Warning: 199 bestiary "store unavailable"
//
// Every response carries an X-Request-ID header, generated unless the
// request supplied one.
//
// # gRPC Health
//
// When server.grpc_addr is set, a gRPC server exposes grpc.health.v1.Health.
// Both the overall ("") and "bestiary.Records" statuses follow a background
// store ping every server.health_interval.
//
// # Listeners
//
// Without Tailscale, HTTP and gRPC listen on the configured TCP addresses.
// With Tailscale, a tsnet node serves HTTP on :80 (or Funnel on :443) and
// gRPC on :50051; the TCP addresses are ignored.
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, s, logger)
//	err = gw.Run(ctx) // blocks until ctx is canceled or a server fails
//
// Run shuts everything down within server.shutdown_timeout and closes the store.
package gateway
