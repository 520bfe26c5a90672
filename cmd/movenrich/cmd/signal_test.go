package cmd

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSetupSignalHandler(t *testing.T) {
	ctx, stop := setupSignalHandler(nil)
	defer stop()

	select {
	case <-ctx.Done():
		t.Error("Context should not be cancelled immediately")
	default:
	}
}

func TestSetupSignalHandlerStop(t *testing.T) {
	ctx, stop := setupSignalHandler(nil)
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Error("Context was not cancelled by stop")
	}
}

func TestSetupSignalHandlerWithCallback(t *testing.T) {
	if os.Getenv("CI") == "true" {
		t.Skip("Skipping signal test in CI environment")
	}

	received := make(chan os.Signal, 1)
	ctx, stop := setupSignalHandler(func(sig os.Signal) {
		received <- sig
	})
	defer stop()

	time.Sleep(10 * time.Millisecond)
	syscall.Kill(syscall.Getpid(), syscall.SIGINT)

	select {
	case <-ctx.Done():
		select {
		case sig := <-received:
			if sig != syscall.SIGINT {
				t.Errorf("Expected signal SIGINT, got %v", sig)
			}
		default:
			t.Error("Callback was not called")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Context was not cancelled after receiving signal")
	}
}
