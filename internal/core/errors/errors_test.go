package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeReadFailure, "file unreadable")
		if err.Error() != "[READ_FAILURE] file unreadable" {
			t.Errorf("expected [READ_FAILURE] file unreadable, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeParseFailure, "parse failed")
		expected := "[PARSE_FAILURE] parse failed: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeUsageError, "missing root argument")
		if !IsCode(err, CodeUsageError) {
			t.Error("expected IsCode to return true for CodeUsageError")
		}
		if IsCode(err, CodeCacheCorrupt) {
			t.Error("expected IsCode to return false for CodeCacheCorrupt")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeParseFailure, "parse failed")
		if !IsCode(err, CodeParseFailure) {
			t.Error("expected IsCode to return true for wrapped CodeParseFailure")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := New(CodeReadFailure, "file unreadable")
		err = AddContext(err, CtxPath, "src/Checkout/Cart.php")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected DomainError")
		}
		if de.Context[CtxPath] != "src/Checkout/Cart.php" {
			t.Errorf("context not attached: %v", de.Context)
		}
	})
}
