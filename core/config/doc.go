// Package config provides configuration management for the connector.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, body limit)
//   - Graph: upstream Graph API settings (base URL, odata metadata level,
//     delta support for generic datasets)
//   - Auth: Azure AD principal credentials (client id/secret, tenant,
//     optional end-user credentials and redirect URL)
//   - Database: optional MySQL checkpoint store
//   - Log: logging level and format
//
// Environment variables map onto nested keys with underscores, e.g.
// AUTH_CLIENT_ID -> auth.client_id, GRAPH_SUPPORTS_SINCE -> graph.supports_since.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
