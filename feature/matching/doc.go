// Package matching exposes the facility name matching wizard over HTTP.
//
// A client creates a session, supplies a primary and a reference list (multipart upload,
// bucket object or registry table), optionally renames columns, then runs matching with
// the chosen key columns and threshold. The result can be fetched as JSON or exported
// as CSV/XLSX, either downloaded or stored under exports/ in the bucket.
//
// # HTTP Endpoints
//
//   - POST /matching/sessions : Create a session.
//   - GET /matching/sessions/:id : Session state, columns and previews.
//   - POST /matching/sessions/:id/upload : Multipart "primary" and "reference" files.
//   - POST /matching/sessions/:id/source : Load lists from storage objects or database tables.
//   - POST /matching/sessions/:id/rename : Rename columns; /rename/skip keeps them.
//   - POST /matching/sessions/:id/match : Run matching.
//   - GET /matching/sessions/:id/result : Stored result and summary.
//   - GET /matching/sessions/:id/export : ?format=csv|xlsx, &store=true to upload.
//   - POST /matching/sessions/:id/reset : Start over.
//   - DELETE /matching/sessions/:id : Drop the session.
//
// Errors are returned as {"error": "..."}: 400 for bad input, 404 for unknown sessions,
// 409 for steps taken out of order, 503 when a source backend is not configured.
package matching
