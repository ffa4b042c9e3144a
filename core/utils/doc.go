// Package utils provides value conversion helpers shared by ingestion, matching and the HTTP layer.
// Cells arrive as loosely typed values (strings, numbers, nil) and these helpers give them a
// single, predictable string or numeric reading.
package utils
