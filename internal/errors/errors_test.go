package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetCodeThroughWrapping(t *testing.T) {
	base := New(CodeMatchNotFound, "match 7 not found")
	wrapped := fmt.Errorf("service: %w", base)

	if got := GetCode(wrapped); got != CodeMatchNotFound {
		t.Fatalf("GetCode() = %s, want %s", got, CodeMatchNotFound)
	}
	if !IsCode(wrapped, CodeMatchNotFound) {
		t.Fatal("IsCode() = false, want true")
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Fatal("expected CodeUnknown for non-domain error")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeVersionMismatch, "stale")
	if !errors.Is(err, New(CodeVersionMismatch, "other message")) {
		t.Fatal("errors.Is should match on code")
	}
	if errors.Is(err, New(CodeInvalidMove, "stale")) {
		t.Fatal("errors.Is should not match a different code")
	}
}

func TestInvalidMoveReason(t *testing.T) {
	err := InvalidMove(ReasonOccupied, "square 3a is occupied")
	if GetMetadata(err)["reason"] != ReasonOccupied {
		t.Fatalf("reason = %q, want %q", GetMetadata(err)["reason"], ReasonOccupied)
	}
	if GetMetadata(errors.New("plain")) != nil {
		t.Fatal("expected nil metadata for non-domain error")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeInternal, "save match", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if err.Error() != "save match: disk full" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeInvalidMove, http.StatusBadRequest},
		{CodeMatchNotFound, http.StatusNotFound},
		{CodeUserNotInThisMatch, http.StatusForbidden},
		{CodeVersionMismatch, http.StatusConflict},
		{CodeInvalidState, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
