// Package api serves the diagram pipeline over HTTP.
//
// # Routes
//
//	GET  /                          service banner
//	GET  /health                    liveness and generator status
//	GET  /api/v1/node-types         supported node types
//	POST /api/v1/generate-diagram   {"description": "..."} → image/png
//	POST /api/v1/render-diagram     raw schema object → image/png
//	POST /api/v1/assistant          {"message": "...", "context": [...]} → reply
//
// Failures are returned as {"detail": "...", "code": "..."}. Caller errors
// (schema violations, unsupported node types, unresolved references, empty
// input) map to 400; generation service failures map to 502; everything
// else maps to 500.
//
// # Temporary files
//
// Every render request gets its own directory under [Config.TempDir], named
// by a random UUID and removed once the response has been written. [Server.Run]
// creates TempDir on start and removes it on shutdown.
package api
