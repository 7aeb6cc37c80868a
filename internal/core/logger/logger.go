package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type FileRotate struct {
	Enable     bool   // 同时写文件并按大小切割
	Filename   string // 如 logs/column.log
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Options struct {
	Level     string // debug / info / warn / error，非法值按 info
	JSON      bool   // 生产用 JSON，本地用彩色控制台
	AddCaller bool
	Rotate    FileRotate
	Fields    []zap.Field // 每行都带的固定字段，如 app、env
}

// New 给命令行工具用，只写 stdout
func New(level string, json bool) (*zap.Logger, func()) {
	return Build(Options{Level: level, JSON: json, AddCaller: true})
}

// NewWithRotate 给 api 进程用，文件名为空时不落盘
func NewWithRotate(level string, json bool, rotate FileRotate, fields ...zap.Field) (*zap.Logger, func()) {
	rotate.Enable = rotate.Enable && rotate.Filename != ""
	return Build(Options{Level: level, JSON: json, AddCaller: true, Rotate: rotate, Fields: fields})
}

// Build 组装顺序：采样 -> 脱敏 -> stdout/文件
func Build(opt Options) (*zap.Logger, func()) {
	lvl := parseLevel(opt.Level)
	enc := newEncoder(opt.JSON)

	sinks := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)}
	if opt.Rotate.Enable {
		sinks = append(sinks, zapcore.NewCore(enc, zapcore.AddSync(newRotator(opt.Rotate)), lvl))
	}

	core := zapcore.NewSamplerWithOptions(redactCore{zapcore.NewTee(sinks...)}, time.Second, 100, 100)

	opts := []zap.Option{zap.Fields(opt.Fields...)}
	if opt.AddCaller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if !opt.JSON {
		opts = append(opts, zap.Development())
	}
	l := zap.New(core, opts...)
	return l, func() { _ = l.Sync() }
}

func parseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.Set(s); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func newEncoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// lumberjack 没有 Sync，包一层让 zap 的 Sync 不报错
type rotator struct{ *lumberjack.Logger }

func (r rotator) Sync() error { return nil }

func newRotator(f FileRotate) rotator {
	return rotator{&lumberjack.Logger{
		Filename:   f.Filename,
		MaxSize:    max(1, f.MaxSizeMB),
		MaxBackups: max(0, f.MaxBackups),
		MaxAge:     max(0, f.MaxAgeDays),
		Compress:   f.Compress,
	}}
}

type lineWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w *lineWriter) Write(p []byte) (int, error) {
	if ce := w.l.Check(w.level, strings.TrimRight(string(p), "\r\n")); ce != nil {
		ce.Write()
	}
	return len(p), nil
}

// ToWriter 把 gin 之类按行输出的日志接到 zap
func ToWriter(l *zap.Logger, level zapcore.Level) io.Writer {
	return &lineWriter{l: l, level: level}
}

func ToStdLogger(l *zap.Logger, level zapcore.Level) (*log.Logger, error) {
	return zap.NewStdLogAt(l, level)
}

func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, _ := zap.RedirectStdLogAt(l, level)
	return undo
}
