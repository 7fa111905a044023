package main

import (
	"threepole/lib/config"
	"threepole/lib/env"
	"threepole/lib/web/bungie"
)

type Flags struct {
	LogLevel  string
	ConfigDir string

	// Store is loaded in the Before hook and available to all commands
	Store *config.Manager
}

func newBungieClient() *bungie.Client {
	return bungie.NewClient(bungie.Config{
		BaseURL: env.BungieURLBase,
		APIKey:  env.BungieAPIKey,
	})
}
