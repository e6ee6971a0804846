// Package database handles the optional MySQL connection.
//
// It wraps GORM to configure the connection pool and timeouts from the
// application's configuration. The connection backs the database cache
// store and the run history; both are disabled when it is unavailable.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logg.Warn("Optional database connection failed", zap.Error(err))
//	}
package database
