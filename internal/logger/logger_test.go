package logger

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Environments(t *testing.T) {
	tests := []struct {
		env     string
		wantErr bool
	}{
		{EnvProd, false},
		{EnvLocal, false},
		{"DEV", false},
		{"staging", true},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			l, err := New(tt.env, Options{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.env, err, tt.wantErr)
			}
			if l != nil {
				_ = l.Sync()
			}
		})
	}
}

func TestNew_LevelOverride(t *testing.T) {
	l, err := New(EnvProd, Options{Level: "warn"})
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled")
	}

	if _, err := New(EnvProd, Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_OutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.log")
	l, err := New(EnvLocal, Options{OutputPath: path})
	if err != nil {
		t.Fatal(err)
	}
	l.Info("hello")
	_ = l.Sync()
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" Debug ")
	if err != nil || level != zapcore.DebugLevel {
		t.Errorf("ParseLevel = %v, %v", level, err)
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected no-op logger")
	}

	fallback := zap.NewExample()
	if got := FromContextOr(context.Background(), fallback); got != fallback {
		t.Error("expected fallback")
	}

	scoped := zap.NewNop().With(zap.String("request_id", "abc"))
	ctx := ContextWithLogger(context.Background(), scoped)
	if got := FromContextOr(ctx, fallback); got != scoped {
		t.Error("expected request-scoped logger")
	}
}
