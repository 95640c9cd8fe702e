package config

import "time"

// Application constants
const (
	AppName    = "dsstool"
	AppVersion = "1.0.0"

	DefaultTemplatesDir = "templates"
	DefaultOutputDir    = "output"

	DefaultRunTimeout     = 5 * time.Minute
	DefaultMaxUploadBytes = 32 << 20 // 32MB

	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second
	WebSocketWriteWait  = 10 * time.Second
	WebSocketMaxMessage = 4096
)
