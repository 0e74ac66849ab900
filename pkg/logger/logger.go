package logger

import (
	"io"
	"lms_console_backend/internal/config"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 在 InitLogger 之前为 no-op，测试中无需初始化
var Log = zap.NewNop()

var level = zap.NewAtomicLevelAt(zap.InfoLevel)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New builds a logger that writes JSON to file (rotated by lumberjack when
// file is set) and, optionally, console lines to console.
func New(cfg config.LogConfig, lvl zapcore.LevelEnabler, console io.Writer) *zap.Logger {
	var cores []zapcore.Core

	if cfg.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), fileWriter, lvl))
	}
	if cfg.Console && console != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(console), lvl))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func InitLogger(cfg *config.Config) {
	ApplyConfig(cfg)
	Log = New(cfg.Log, level, os.Stdout).Named("lms-console")
}

// ApplyConfig 热更新日志级别：log.level 优先，否则 debug 模式输出 Debug
func ApplyConfig(cfg *config.Config) {
	level.SetLevel(LevelFor(cfg.Log.Level, cfg.Server.Mode))
}

func LevelFor(explicit, mode string) zapcore.Level {
	if explicit != "" {
		if lvl, err := zapcore.ParseLevel(explicit); err == nil {
			return lvl
		}
	}
	if mode == "debug" {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}
