package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "tree.build")
		panic("index out of range")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "tree.build" {
		t.Errorf("Expected operation 'tree.build', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if want := "panic in tree.build: index out of range"; panicErr.Error() != want {
		t.Errorf("Expected error message '%s', got '%s'", want, panicErr.Error())
	}
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "tree.build")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

// TestRecover_WithExistingError tests Recover when function has existing error and panic occurs
func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "Fit")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "panic in Fit") {
		t.Errorf("Error message should contain panic info: %s", err.Error())
	}
	if !errors.Is(err, originalErr) {
		t.Error("Should be able to identify original error with errors.Is")
	}
}

func TestPanicError_UnwrapErrorValue(t *testing.T) {
	cause := fmt.Errorf("worker failed")
	panicErr := NewPanicError("tree.build", cause)

	if !errors.Is(panicErr, cause) {
		t.Error("PanicError should unwrap to an error panic value")
	}
	if NewPanicError("tree.build", 42).Unwrap() != nil {
		t.Error("Unwrap of a non-error panic value should be nil")
	}
	if !strings.Contains(panicErr.String(), "Stack trace:") {
		t.Error("String() should include stack trace information")
	}
}

func TestSafeExecute(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		if err := SafeExecute("op", func() error { return nil }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("function error", func(t *testing.T) {
		want := fmt.Errorf("function error")
		if err := SafeExecute("op", func() error { return want }); err != want {
			t.Fatalf("Expected original error, got: %v", err)
		}
	})

	t.Run("panic", func(t *testing.T) {
		err := SafeExecute("op", func() error { panic("boom") })
		var panicErr *PanicError
		if !errors.As(err, &panicErr) {
			t.Fatalf("Expected PanicError, got %T", err)
		}
		if panicErr.PanicValue != "boom" {
			t.Errorf("Expected panic value 'boom', got '%v'", panicErr.PanicValue)
		}
	})
}

func BenchmarkRecover_NoPanic(b *testing.B) {
	for i := 0; i < b.N; i++ {
		func() (err error) {
			defer Recover(&err, "BenchmarkOp")
			return nil
		}()
	}
}
