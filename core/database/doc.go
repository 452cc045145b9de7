// Package database handles the optional checkpoint database connection.
//
// It provides a wrapper around GORM to properly configure MySQL connections
// based on the application's configuration. The connection is optional: when
// it is disabled or fails, the connector runs stateless and delta cursors
// only travel through the downstream pipeline's since parameter.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logg.Warn("checkpoint store unavailable", zap.Error(err))
//	}
package database
