package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logFile 日誌檔位置（相對於工作目錄）
var logFile = filepath.Join("logs", "app.log")

// Logger 全局日誌實例，InitLogger 之前為 no-op
var Logger = zap.NewNop()

// 級別縮寫與終端機顏色
var levelLabels = map[zapcore.Level]string{
	zapcore.DebugLevel: "\033[36mDBG\033[0m",
	zapcore.InfoLevel:  "\033[32mINF\033[0m",
	zapcore.WarnLevel:  "\033[33mWRN\033[0m",
	zapcore.ErrorLevel: "\033[31mERR\033[0m",
	zapcore.FatalLevel: "\033[35mFAT\033[0m",
}

// encoderConfig 檔案與終端機共用的欄位設定；console 輸出帶顏色
func encoderConfig(colored bool) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("15:04:05.000"))
		},
	}
	if colored {
		cfg.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			if label, ok := levelLabels[l]; ok {
				enc.AppendString(label)
				return
			}
			enc.AppendString(l.CapitalString())
		}
	}
	return cfg
}

// InitLogger 初始化日誌：JSON 寫入 logs/app.log，同時以彩色格式輸出到 stdout。
// 無法辨識的級別視為 info。
func InitLogger(logLevel string) error {
	level, err := zapcore.ParseLevel(strings.TrimSpace(logLevel))
	if err != nil {
		level = zapcore.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig(false)), zapcore.AddSync(f), level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig(true)), zapcore.AddSync(os.Stdout), level),
	)
	Logger = zap.New(core, zap.AddCallerSkip(1), zap.Fields(zap.String("service", "meal-planner")))
	zap.ReplaceGlobals(Logger)
	return nil
}

// SetLogger 替換全局 logger（測試使用）；nil 還原為 no-op
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Logger = l
}

// secretKeys 欄位名稱含這些字樣時不寫入日誌
var secretKeys = []string{"password", "api_key", "secret", "token"}

func filterFields(fields []zap.Field) []zap.Field {
	filtered := fields[:0:0]
	for _, field := range fields {
		if isSecretKey(field.Key) {
			continue
		}
		filtered = append(filtered, field)
	}
	return filtered
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range secretKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

// LogInfo 記錄信息日誌
func LogInfo(msg string, fields ...zap.Field) {
	Logger.Info(msg, filterFields(fields)...)
}

// LogError 記錄錯誤日誌
func LogError(msg string, fields ...zap.Field) {
	Logger.Error(msg, filterFields(fields)...)
}

// LogWarn 記錄警告日誌
func LogWarn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, filterFields(fields)...)
}

// LogDebug 記錄調試日誌
func LogDebug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, filterFields(fields)...)
}

// LogFatal 記錄後結束程式
func LogFatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, filterFields(fields)...)
}

// Sync 同步日誌緩衝
func Sync() {
	_ = Logger.Sync()
}

// LogCacheHit 記錄快取命中
func LogCacheHit(backend, key string) {
	LogDebug("快取命中", zap.String("backend", backend), zap.String("key", key))
}

// LogCacheMiss 記錄快取未命中
func LogCacheMiss(backend, key string) {
	LogDebug("快取未命中", zap.String("backend", backend), zap.String("key", key))
}

// LogDataQuality 記錄資料品質警告（未知單位、缺少營養資料等）
func LogDataQuality(kind string, fields ...zap.Field) {
	LogWarn("資料品質警告", append([]zap.Field{zap.String("kind", kind)}, fields...)...)
}
