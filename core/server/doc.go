// Package server holds the HTTP status API configuration.
//
// The daemon entry point builds the Fiber application; this package only
// defines the listen port, the API key and whether the API is served.
package server
