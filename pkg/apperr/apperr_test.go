package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("handler: %w", Internal(cause))

	appErr, ok := As(err)
	if !ok {
		t.Fatal("Expected AppError in chain")
	}
	if appErr.Status != http.StatusInternalServerError || appErr.Code != CodeInternalError {
		t.Errorf("Unexpected error: %+v", appErr)
	}
	if !errors.Is(err, cause) {
		t.Error("Cause should be reachable with errors.Is")
	}
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("limit", "must be positive")
	if err.Details["field"] != "limit" {
		t.Errorf("Expected field detail, got %v", err.Details)
	}
	if err.Error() != "[INVALID_INPUT] invalid input for 'limit': must be positive" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestCodeForStatus(t *testing.T) {
	tests := map[int]string{
		400: CodeBadRequest,
		404: CodeNotFound,
		405: CodeNotFound,
		413: CodePayloadTooLarge,
		503: CodeUnavailable,
		418: CodeUnknown,
	}
	for status, want := range tests {
		if got := CodeForStatus(status); got != want {
			t.Errorf("CodeForStatus(%d) = %s, expected %s", status, got, want)
		}
	}
}
