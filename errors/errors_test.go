package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeInvalidToken, "bad token", http.StatusUnauthorized)
	if err.Code != ErrCodeInvalidToken {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidToken, err.Code)
	}
	if err.Message != "bad token" {
		t.Errorf("expected message 'bad token', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("INVALID_TOKEN should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_ProviderUnavailable(t *testing.T) {
	err := ProviderUnavailable("enterprise")
	if err.Code != ErrCodeProviderUnavailable {
		t.Errorf("expected PROVIDER_UNAVAILABLE, got %s", err.Code)
	}
	if !err.Retryable {
		t.Error("ProviderUnavailable should be retryable")
	}
	if err.Details["provider"] != "enterprise" {
		t.Errorf("expected provider=enterprise, got %v", err.Details["provider"])
	}
}

func TestAppError_TokenUnavailable(t *testing.T) {
	err := TokenUnavailable("consumer")
	if err.Code != ErrCodeTokenUnavailable {
		t.Errorf("expected TOKEN_UNAVAILABLE, got %s", err.Code)
	}
	if err.Retryable {
		t.Error("TokenUnavailable should not be retryable")
	}
	if err.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", err.HTTPStatus)
	}
}

func TestAppError_MalformedUserPayload_MissingFields(t *testing.T) {
	err := MalformedUserPayload("consumer", "id", "email")
	if err.Code != ErrCodeMalformedUserPayload {
		t.Errorf("expected MALFORMED_USER_PAYLOAD, got %s", err.Code)
	}
	missing, _ := err.Details["missing_fields"].(string)
	if !strings.Contains(missing, "id") || !strings.Contains(missing, "email") {
		t.Errorf("expected missing fields in details, got %q", missing)
	}
}

func TestAppError_RemoteSignOutFailure_Cause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := RemoteSignOutFailure("enterprise", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to match the cause")
	}
	if !err.Retryable {
		t.Error("RemoteSignOutFailure should be retryable")
	}
}

func TestAppError_WithCause_Unwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Internal(nil).WithCause(cause)
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return the cause")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected cause in error string, got %q", err.Error())
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := Unauthorized("").WithDetail("provider", "consumer")
	if err.Details["provider"] != "consumer" {
		t.Errorf("expected provider detail, got %v", err.Details)
	}
}

func TestIsCode_Success(t *testing.T) {
	err := TokenUnavailable("enterprise")
	wrapped := fmt.Errorf("fetching token: %w", err)
	if !IsCode(wrapped, ErrCodeTokenUnavailable) {
		t.Error("expected IsCode to match through wrapping")
	}
	if IsCode(wrapped, ErrCodeTimeout) {
		t.Error("expected IsCode to reject a different code")
	}
}

func TestIsCode_NonAppError(t *testing.T) {
	if IsCode(fmt.Errorf("plain"), ErrCodeInternal) {
		t.Error("expected IsCode to be false for non-AppError")
	}
}

func TestAsAppError(t *testing.T) {
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected false for non-AppError")
	}
	appErr, ok := AsAppError(fmt.Errorf("wrap: %w", StateMismatch("consumer")))
	if !ok {
		t.Fatal("expected true for wrapped AppError")
	}
	if appErr.Code != ErrCodeStateMismatch {
		t.Errorf("expected STATE_MISMATCH, got %s", appErr.Code)
	}
}
