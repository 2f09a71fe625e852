package app

import (
	"context"
	"testing"

	apperrors "sitedeploy/internal/errors"
)

func TestCancelled(t *testing.T) {
	if err := cancelled(context.Background()); err != nil {
		t.Fatalf("live context reported cancellation: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cancelled(ctx)
	if err == nil {
		t.Fatal("cancelled context produced no error")
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		t.Fatalf("expected structured error, got %T", err)
	}
	if appErr.Kind != apperrors.KindEnvironment {
		t.Errorf("Kind = %v, want %v: an interrupt is not bad operator input", appErr.Kind, apperrors.KindEnvironment)
	}
	if apperrors.ExitCodeFor(err) != 1 {
		t.Errorf("exit code = %d, want 1", apperrors.ExitCodeFor(err))
	}
}
