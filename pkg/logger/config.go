package logger

import "log/slog"

type Backend string

const (
	BackendStd Backend = "std" // text handler, for dev
	BackendZap Backend = "zap" // JSON via slog-zap, for stage/prod
)

type Config struct {
	Service    string
	Version    string
	InstanceID string

	Level   slog.Level
	Env     Env
	Backend Backend // default: zap for stage/prod, std for dev
	Debug   bool

	AddSource bool
}
