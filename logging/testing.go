package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// testAppender routes entries to `testing.TB.Log` so that log lines stay attached to the test that produced them,
// even when tests run in parallel.
type testAppender struct {
	tb testing.TB
}

// NewTestAppender returns an appender writing console formatted lines to tb. The logger name column is always
// present so subloggers of concurrent checkers can be told apart.
func NewTestAppender(tb testing.TB) Appender {
	return &testAppender{tb}
}

func (tapp *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	tapp.tb.Helper()
	line, err := consoleLine(entry, fields, true)
	tapp.tb.Log(line)
	return err
}

func (tapp *testAppender) Sync() error {
	return nil
}
