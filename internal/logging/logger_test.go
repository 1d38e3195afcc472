package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	testCases := []struct {
		level    string
		expected zapcore.Level
	}{
		{level: "", expected: zapcore.InfoLevel},
		{level: "DEBUG", expected: zapcore.DebugLevel},
		{level: " warning ", expected: zapcore.WarnLevel},
		{level: "error", expected: zapcore.ErrorLevel},
	}
	for _, testCase := range testCases {
		logger, err := NewLogger(testCase.level, FormatJSON)
		if err != nil {
			t.Fatalf("level %q: unexpected error %v", testCase.level, err)
		}
		if !logger.Core().Enabled(testCase.expected) {
			t.Fatalf("level %q: expected %s enabled", testCase.level, testCase.expected)
		}
		if testCase.expected > zapcore.DebugLevel && logger.Core().Enabled(testCase.expected-1) {
			t.Fatalf("level %q: expected %s disabled", testCase.level, testCase.expected-1)
		}
	}
}

func TestNewLoggerRejectsUnknownSettings(t *testing.T) {
	if _, err := NewLogger("verbose", FormatJSON); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := NewLogger("info", "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := NewLogger("info", FormatConsole); err != nil {
		t.Fatalf("console format failed: %v", err)
	}
}
