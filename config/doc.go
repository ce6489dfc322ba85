// Package config loads smartsearch configuration.
//
// It uses Viper to read an optional config.yml and godotenv to read an
// optional .env file, then overlays environment variables. Environment
// variable names are derived from the target struct's mapstructure tags:
// the key providers.deepgram.api_key is read from PROVIDERS_DEEPGRAM_API_KEY.
//
// # Usage
//
//	var cfg searchinput.Config
//	err := config.LoadConfig("smartsearch", &cfg, config.WithConfigFile(path))
package config
