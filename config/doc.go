// Package config loads yeet configuration with Viper.
//
// Values come from a YAML file, an optional .env file and YEET_-prefixed
// environment variables, in increasing order of precedence.
//
// # Usage
//
//	var cfg runner.Config
//	err := config.LoadConfig("yeet", &cfg, config.WithConfigFile("yeet.yml"))
//
// YEET_PENDING_POLICY=overwrite maps onto the key pending_policy, and
// YEET_LOGGING_LEVEL=debug onto logging.level.
package config
