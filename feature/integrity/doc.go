// Package integrity checks the infrastructure the matcher depends on.
//
// # Checks Provided
//
//   - Structure: the uploads/ and exports/ folders exist in the storage bucket.
//   - Database: the optional registry database answers a ping; requested tables exist.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/database : Runs database check (supports ?tables=a,b).
package integrity
