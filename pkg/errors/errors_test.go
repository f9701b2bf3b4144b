package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code         Code
		presentation Presentation
		recovery     Recovery
		reauth       bool
	}{
		{code: CodeAuthRequired, presentation: PresentAlert, recovery: RecoveryRedirectLogin, reauth: true},
		{code: CodeUnauthorizedAccess, presentation: PresentAlert, recovery: RecoveryRedirectLogin, reauth: true},
		{code: CodeTokenExpired, presentation: PresentAlert, recovery: RecoveryRedirectLogin, reauth: true},
		{code: CodeInvalidToken, presentation: PresentAlert, recovery: RecoveryRedirectLogin, reauth: true},
		{code: CodeTokenNotFound, presentation: PresentAlert, recovery: RecoveryRedirectLogin, reauth: true},
		{code: CodeAccountNotVerified, presentation: PresentInline, recovery: RecoveryResendVerification},
		{code: CodeAccountDeactivated, presentation: PresentInline, recovery: RecoveryNone},
		{code: CodeInvalidPassword, presentation: PresentInline, recovery: RecoveryNone},
		{code: CodeInvalidCode, presentation: PresentInline, recovery: RecoveryDecrementAttempts},
		{code: CodeMaxAttemptsExceeded, presentation: PresentInline, recovery: RecoveryRestartResetFlow},
		{code: CodeInvalidOrExpiredToken, presentation: PresentInline, recovery: RecoveryRestartResetFlow},
		{code: CodeAborted, presentation: PresentSilent, recovery: RecoveryNone},
		{code: CodeNetwork, presentation: PresentToast, recovery: RecoveryNone},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.Presentation != tt.presentation {
			t.Fatalf("code %s expected presentation %s got %s", tt.code, tt.presentation, meta.Presentation)
		}
		if meta.Recovery != tt.recovery {
			t.Fatalf("code %s expected recovery %s got %s", tt.code, tt.recovery, meta.Recovery)
		}
		if meta.RequiresReauth != tt.reauth {
			t.Fatalf("code %s expected reauth %v got %v", tt.code, tt.reauth, meta.RequiresReauth)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToUnknown(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta != MetadataFor(CodeUnknown) {
		t.Fatalf("expected UNKNOWN_ERROR metadata, got %+v", meta)
	}
	if IsAuthCode("SOMETHING_UNKNOWN") {
		t.Fatalf("unknown code must not require reauth")
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeInvalidPassword, "wrong password").WithStatus(401)
	if base.Code() != CodeInvalidPassword {
		t.Fatalf("expected invalid password code, got %s", base.Code())
	}
	if base.Message() != "wrong password" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Status() != 401 {
		t.Fatalf("unexpected status %d", base.Status())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]string{"email": "is required"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeNetwork, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeNetwork {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestNilErrorAccessors(t *testing.T) {
	var e *Error
	if e.Code() != CodeUnknown || e.Message() != "" || e.Status() != 0 {
		t.Fatalf("nil error accessors should return zero values")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeUserNotFound, "missing"))
	if got := As(err); got == nil || got.Code() != CodeUserNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestNormalizeAlwaysYieldsCodeAndMessage(t *testing.T) {
	cases := []error{
		stdErrors.New("plain"),
		New("", ""),
		New(CodeServerError, ""),
		fmt.Errorf("wrapped: %w", New(CodeTokenExpired, "expired")),
	}
	for _, in := range cases {
		got := Normalize(in, "fallback")
		if got.Code() == "" {
			t.Fatalf("normalize(%v) produced empty code", in)
		}
		if got.Message() == "" {
			t.Fatalf("normalize(%v) produced empty message", in)
		}
	}
	if Normalize(nil, "x") != nil {
		t.Fatalf("normalize(nil) should be nil")
	}
}

func TestIsAborted(t *testing.T) {
	if !IsAborted(context.Canceled) {
		t.Fatalf("context.Canceled should count as aborted")
	}
	if !IsAborted(New(CodeAborted, "canceled")) {
		t.Fatalf("REQUEST_ABORTED should count as aborted")
	}
	if IsAborted(New(CodeNetwork, "down")) {
		t.Fatalf("network failure is not an abort")
	}
	if IsAborted(nil) {
		t.Fatalf("nil is not an abort")
	}
	if got := Normalize(fmt.Errorf("x: %w", context.Canceled), "f"); got.Code() != CodeAborted {
		t.Fatalf("expected aborted code, got %s", got.Code())
	}
}
