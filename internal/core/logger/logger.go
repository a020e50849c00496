package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"person-registry/internal/core/config"
)

// Options 对应配置里的 log 段，外加进程名
type Options struct {
	App    string // 每条日志附带的 app 字段
	Level  string // debug / info / warn / error
	JSON   bool   // 控制台开发格式 or JSON
	Rotate config.Rotate
}

// FromConfig api / admin 两个进程共用
func FromConfig(app string, c config.Log) (*zap.Logger, func()) {
	return New(Options{App: app, Level: c.Level, JSON: c.JSON, Rotate: c.Rotate})
}

// New 返回 logger 和 flush 函数（退出前调用）
func New(opt Options) (*zap.Logger, func()) {
	lvl, err := zapcore.ParseLevel(opt.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	enc := encoder(opt.JSON)
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl)}

	if r := opt.Rotate; r.Enable && r.Filename != "" {
		// 文件里统一用 JSON，方便采集
		file := zapcore.AddSync(&lumberjack.Logger{
			Filename:   r.Filename,
			MaxSize:    max(1, r.MaxSizeMB),
			MaxBackups: max(0, r.MaxBackups),
			MaxAge:     max(0, r.MaxAgeDays),
			Compress:   r.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder(true), file, lvl))
	}

	// 同一秒内相同消息前 100 条全记，之后每 100 条记 1 条
	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)

	zopts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if !opt.JSON {
		zopts = append(zopts, zap.Development())
	}
	l := zap.New(core, zopts...)
	if opt.App != "" {
		l = l.With(zap.String("app", opt.App))
	}
	return l, func() { _ = l.Sync() }
}

func encoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// RedirectStdLog 标准库 log（gorm 默认 logger 走这里）转到 zap
func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}
