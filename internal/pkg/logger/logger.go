package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

const redacted = "[REDACTED]"

// secretKeys are key fragments whose values never reach the log output.
var secretKeys = []string{"token", "authorization", "password", "secret", "email"}

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a zap logger: JSON at info level for "prod"/"production",
// the development console encoder at debug level otherwise.
func New(mode string) (*Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: z.Sugar()}, nil
}

func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) ok() bool { return l != nil && l.SugaredLogger != nil }

func (l *Logger) Sync() {
	if l.ok() {
		_ = l.SugaredLogger.Sync()
	}
}

func (l *Logger) Debug(msg string, kv ...interface{}) {
	if l.ok() {
		l.SugaredLogger.Debugw(msg, scrub(kv)...)
	}
}

func (l *Logger) Info(msg string, kv ...interface{}) {
	if l.ok() {
		l.SugaredLogger.Infow(msg, scrub(kv)...)
	}
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	if l.ok() {
		l.SugaredLogger.Warnw(msg, scrub(kv)...)
	}
}

func (l *Logger) Error(msg string, kv ...interface{}) {
	if l.ok() {
		l.SugaredLogger.Errorw(msg, scrub(kv)...)
	}
}

// Fatal logs and exits with status 1, also for a nil logger.
func (l *Logger) Fatal(msg string, kv ...interface{}) {
	if !l.ok() {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
	l.SugaredLogger.Fatalw(msg, scrub(kv)...)
}

func (l *Logger) With(kv ...interface{}) *Logger {
	if !l.ok() {
		return l
	}
	return &Logger{SugaredLogger: l.SugaredLogger.With(scrub(kv)...)}
}

// scrub returns kv with secret values replaced. A trailing key without a
// value is passed through for zap to report.
func scrub(kv []interface{}) []interface{} {
	if len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, _ := out[i].(string)
		if isSecretKey(key) || looksLikeJWT(out[i+1]) {
			out[i+1] = redacted
		}
	}
	return out
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

func looksLikeJWT(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}
