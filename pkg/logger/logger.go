package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Set groups the application loggers by concern. Each one writes JSON to
// its own file under the configured directory. A Set is built once in main
// and handed to the components that log; there is no package-level logger.
type Set struct {
	Error    *zap.Logger
	Audit    *zap.Logger
	Request  *zap.Logger
	Security *zap.Logger
	System   *zap.Logger
}

func newLogger(filePath string, level zapcore.Level) (*zap.Logger, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	ws := zapcore.AddSync(file)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		ws,
		level,
	)
	return zap.New(core), nil
}

// New creates the logger set under dir, creating the directory if needed.
func New(dir string) (*Set, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	s := &Set{}
	var err error

	if s.Error, err = newLogger(filepath.Join(dir, "errors.log"), zapcore.ErrorLevel); err != nil {
		return nil, err
	}
	if s.Audit, err = newLogger(filepath.Join(dir, "audit.log"), zapcore.InfoLevel); err != nil {
		return nil, err
	}
	if s.Request, err = newLogger(filepath.Join(dir, "request.log"), zapcore.InfoLevel); err != nil {
		return nil, err
	}
	if s.Security, err = newLogger(filepath.Join(dir, "security.log"), zapcore.WarnLevel); err != nil {
		return nil, err
	}
	if s.System, err = newLogger(filepath.Join(dir, "system.log"), zapcore.InfoLevel); err != nil {
		return nil, err
	}

	return s, nil
}

// NewNop returns a Set that discards everything. Used in tests.
func NewNop() *Set {
	nop := zap.NewNop()
	return &Set{
		Error:    nop,
		Audit:    nop,
		Request:  nop,
		Security: nop,
		System:   nop,
	}
}

// Sync flushes all buffered log entries. Called via defer in main.
func (s *Set) Sync() {
	_ = s.Error.Sync()
	_ = s.Audit.Sync()
	_ = s.Request.Sync()
	_ = s.Security.Sync()
	_ = s.System.Sync()
}
