// Package http provides the HTTP handlers and middleware for the agency
// CRM API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"full_name","password"}.
//     Response: {"token","expires_at","profile"} with the token also surfaced
//     via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the presented session token and
//     clears the cookie. Returns 204 No Content.
//   - GET /clients, POST /clients, PUT /clients/{id}: client records scoped
//     to the principal (the owner sees every employee's clients). Listing
//     accepts `status` and `search` query parameters.
//   - POST /clients/{id}/status: moves a client through the pipeline.
//     Body: {"status","reason"}; an invalid edge yields 409.
//   - GET /events, POST /events, PUT /events/{id}, DELETE /events/{id}:
//     calendar events scoped like clients. Owner-submitted events carry the
//     target employee's name as a title prefix.
//   - GET /statistics: owner-only aggregated view.
//   - GET /export/clients, GET /export/statistics: XLSX downloads.
//   - GET /now: the current wall time in the agency's fixed civil zone.
//
// Request/response DTOs live alongside their handlers so tests and
// documentation share the same ground truth.
package http
