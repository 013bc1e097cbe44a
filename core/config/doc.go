// Package config loads environment variables into typed structs with
// caarlos0/env. A .env file in the working directory is read once before the
// first parse, and each struct type is parsed once and cached.
//
//	type Config struct {
//		Addr      string `env:"HTTP_ADDR" envDefault:":8080"`
//		RedisURL  string `env:"REDIS_URL"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Tests that change the environment call Reset between cases.
package config
