package logging

import (
	"log/slog"
	"os"
)

// SubSystem tags every log line so records from the factory, the escrows and
// the fee ledger can be separated downstream.
type SubSystem string

const (
	System  SubSystem = "system"
	Server  SubSystem = "server"
	Factory SubSystem = "factory"
	Escrow  SubSystem = "escrow"
	Fees    SubSystem = "fees"
	Tokens  SubSystem = "tokens"
	Ledger  SubSystem = "ledger"
	Events  SubSystem = "events"
	Badges  SubSystem = "badges"
	Config  SubSystem = "config"
)

func Init(level slog.Level) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func Warn(msg string, subSystem SubSystem, keyvals ...interface{}) {
	withSubsystem := append([]interface{}{"subsystem", subSystem}, keyvals...)
	slog.Warn(msg, withSubsystem...)
}

func Info(msg string, subSystem SubSystem, keyvals ...interface{}) {
	withSubsystem := append([]interface{}{"subsystem", subSystem}, keyvals...)
	slog.Info(msg, withSubsystem...)
}
func Error(msg string, subSystem SubSystem, keyvals ...interface{}) {
	withSubsystem := append([]interface{}{"subsystem", subSystem}, keyvals...)
	slog.Error(msg, withSubsystem...)
}
func Debug(msg string, subSystem SubSystem, keyvals ...interface{}) {
	withSubsystem := append([]interface{}{"subsystem", subSystem}, keyvals...)
	slog.Debug(msg, withSubsystem...)
}
