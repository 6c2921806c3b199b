// Package config loads typed configuration structs from environment
// variables.
//
// A .env file in the working directory is loaded once per process
// before the first parse, so local development works without exporting
// variables. Struct fields are mapped with caarlos0/env tags:
//
//	type AppConfig struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//		DB   pg.Config
//	}
//
//	var cfg AppConfig
//	config.MustLoad(&cfg)
package config
