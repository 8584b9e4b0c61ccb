package main

import "time"

type Config struct {
	BadgerFilepath  string        `env:"BADGER_FILEPATH,default=./data/party"`
	LogLevel        string        `env:"LOG_LEVEL,default=WARN"`
	EventExpiry     time.Duration `env:"EVENT_EXPIRY,default=5s"`
	SyncInterval    time.Duration `env:"SYNC_INTERVAL,default=2s"`
	DriftThreshold  float64       `env:"DRIFT_THRESHOLD,default=2.0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=3s"`
	SearchLimit     int           `env:"SEARCH_LIMIT,default=10"`
}
