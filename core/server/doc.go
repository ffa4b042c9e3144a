// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the settings it needs: the listen port, the optional API key protecting
// every route, and the upload size limit applied to facility list uploads.
package server
