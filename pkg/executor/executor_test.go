package executor

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestExecute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{"stdout captured", []string{"-c", "echo hello"}, "hello\n", ""},
		{"stderr in error", []string{"-c", "echo boom >&2; exit 3"}, "", "stderr: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Execute(context.Background(), "sh", tt.args...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Execute() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Execute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecuteInterruptible(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := New().ExecuteInterruptible(ctx, time.Second, "sleep", "30")
	if err != nil {
		t.Fatalf("ExecuteInterruptible() error = %v, want nil after interrupt", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("ExecuteInterruptible() took %v, want prompt stop", elapsed)
	}
}

func TestExecuteInterruptibleFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	err := New().ExecuteInterruptible(context.Background(), time.Second, "sh", "-c", "exit 2")
	if err == nil {
		t.Fatal("ExecuteInterruptible() error = nil, want failure")
	}
}
