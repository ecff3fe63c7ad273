package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 统一日志接口，键值对形式
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)

	// With 派生带固定字段的子 logger
	With(kv ...any) Logger
}

// Options 日志初始化选项
type Options struct {
	Level   string   // debug / info / warn / error
	Writers []string // console / file
	File    string   // file writer 输出路径
}

type zeroLogger struct {
	l zerolog.Logger
}

// New 创建 zerolog 实现
func New(opts Options) Logger {
	var ws []io.Writer
	for _, w := range opts.Writers {
		switch strings.ToLower(w) {
		case "console":
			ws = append(ws, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
		case "file":
			path := opts.File
			if path == "" {
				path = "dramaboxcore.log"
			}
			ws = append(ws, &lumberjack.Logger{
				Filename:   path,
				MaxSize:    32, // MB
				MaxBackups: 5,
				MaxAge:     14, // days
				Compress:   true,
			})
		}
	}
	if len(ws) == 0 {
		ws = append(ws, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(ws...)).Level(lvl).With().Timestamp().Logger()
	return &zeroLogger{l: zl}
}

func (z *zeroLogger) Debug(msg string, kv ...any) { emit(z.l.Debug(), msg, kv) }
func (z *zeroLogger) Info(msg string, kv ...any)  { emit(z.l.Info(), msg, kv) }
func (z *zeroLogger) Warn(msg string, kv ...any)  { emit(z.l.Warn(), msg, kv) }
func (z *zeroLogger) Error(msg string, kv ...any) { emit(z.l.Error(), msg, kv) }

func (z *zeroLogger) With(kv ...any) Logger {
	ctx := z.l.With()
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(k, kv[i+1])
	}
	return &zeroLogger{l: ctx.Logger()}
}

func emit(ev *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(k, kv[i+1])
	}
	ev.Msg(msg)
}
