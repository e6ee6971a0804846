// Package middleware contains HTTP middleware for the Fiber application.
//
//   - auth: API key validation through the X-API-Key header.
//   - rayid: a request id stored in the context locals and echoed in the
//     X-Ray-ID response header, picked up by logger.WithRayID.
package middleware
