package recovery

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   FailureClass
	}{
		{401, ClassUnauthorized},
		{403, ClassBlocked},
		{429, ClassBlocked},
		{500, ClassTransient},
		{502, ClassTransient},
		{404, ClassTransient},
	}

	for _, tt := range tests {
		if got := ClassifyStatus(tt.status); got != tt.want {
			t.Errorf("ClassifyStatus(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestClassify_TaggedError(t *testing.T) {
	err := NewError(ClassBlocked, "search", errors.New("403 forbidden"))
	if got := Classify(err); got != ClassBlocked {
		t.Errorf("Classify = %s, want %s", got, ClassBlocked)
	}
}

func TestClassify_WrappedError(t *testing.T) {
	inner := NewError(ClassUnauthorized, "search", errors.New("401"))
	wrapped := fmt.Errorf("fetching items: %w", inner)

	if got := Classify(wrapped); got != ClassUnauthorized {
		t.Errorf("Classify through wrapping = %s, want %s", got, ClassUnauthorized)
	}
}

func TestClassify_PlainErrorIsTransient(t *testing.T) {
	if got := Classify(errors.New("connection refused")); got != ClassTransient {
		t.Errorf("Classify = %s, want %s", got, ClassTransient)
	}
}

func TestError_Unwrap(t *testing.T) {
	sentinel := errors.New("boom")
	err := NewError(ClassStore, "mark seen", sentinel)

	if !errors.Is(err, sentinel) {
		t.Error("expected errors.Is to reach the wrapped error")
	}
}
