//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		SetLevel(tt.level)
		assert.Equal(t, tt.want, zapLevel.Level(), "level %q", tt.level)
	}
	SetLevel(LevelInfo)
}

func TestPackageLevelFunctions(t *testing.T) {
	// Must not panic with the default logger.
	Debug("debug message")
	Debugf("debug %s", "message")
	Info("info message")
	Infof("info %s", "message")
	Warn("warn message")
	Warnf("warn %s", "message")
	Error("error message")
	Errorf("error %s", "message")
}
