// Package config loads environment-based configuration structs for the
// delivery core. Each component declares a Config struct with `env` tags
// (see pkg/push, pkg/email, pkg/pg); this package parses them with
// caarlos0/env after loading an optional .env file via godotenv.
//
//	var cfg push.APNSConfig
//	if err := config.Load(&cfg); err != nil {
//		// missing required credentials etc.
//	}
package config
