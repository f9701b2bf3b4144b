package errors

// Presentation is how a failure reaches the user.
type Presentation string

const (
	PresentSilent Presentation = "silent"
	PresentInline Presentation = "inline"
	PresentToast  Presentation = "toast"
	PresentAlert  Presentation = "alert"
)

// Recovery names the follow-up the UI performs for a code.
type Recovery string

const (
	RecoveryNone               Recovery = "none"
	RecoveryRedirectLogin      Recovery = "redirect_login"
	RecoveryResendVerification Recovery = "resend_verification"
	RecoveryDecrementAttempts  Recovery = "decrement_attempts"
	RecoveryRestartResetFlow   Recovery = "restart_reset_flow"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Metadata struct {
	Severity       Severity
	Presentation   Presentation
	Recovery       Recovery
	RequiresReauth bool
	MessageKey     string
}

var authMetadata = Metadata{
	Severity:       SeverityWarning,
	Presentation:   PresentAlert,
	Recovery:       RecoveryRedirectLogin,
	RequiresReauth: true,
	MessageKey:     "errors.auth_required",
}

var metadataByCode = map[Code]Metadata{
	CodeAuthRequired:       authMetadata,
	CodeUnauthorizedAccess: authMetadata,
	CodeTokenExpired:       withKey(authMetadata, "errors.token_expired"),
	CodeInvalidToken:       authMetadata,
	CodeTokenNotFound:      authMetadata,
	CodeAccountNotVerified: {
		Severity:     SeverityWarning,
		Presentation: PresentInline,
		Recovery:     RecoveryResendVerification,
		MessageKey:   "errors.account_not_verified",
	},
	CodeAccountDeactivated: {
		Severity:     SeverityError,
		Presentation: PresentInline,
		Recovery:     RecoveryNone,
		MessageKey:   "errors.account_deactivated",
	},
	CodeUserNotFound: {
		Severity:     SeverityError,
		Presentation: PresentInline,
		Recovery:     RecoveryNone,
		MessageKey:   "errors.user_not_found",
	},
	CodeInvalidPassword: {
		Severity:     SeverityError,
		Presentation: PresentInline,
		Recovery:     RecoveryNone,
		MessageKey:   "errors.invalid_password",
	},
	CodeServerError: {
		Severity:     SeverityError,
		Presentation: PresentInline,
		Recovery:     RecoveryNone,
		MessageKey:   "errors.server_error",
	},
	CodeInvalidCode: {
		Severity:     SeverityWarning,
		Presentation: PresentInline,
		Recovery:     RecoveryDecrementAttempts,
		MessageKey:   "errors.invalid_code",
	},
	CodeMaxAttemptsExceeded: {
		Severity:     SeverityError,
		Presentation: PresentInline,
		Recovery:     RecoveryRestartResetFlow,
		MessageKey:   "errors.max_attempts_exceeded",
	},
	CodeInvalidOrExpiredToken: {
		Severity:     SeverityError,
		Presentation: PresentInline,
		Recovery:     RecoveryRestartResetFlow,
		MessageKey:   "errors.invalid_or_expired_token",
	},
	CodeUnknown: {
		Severity:     SeverityError,
		Presentation: PresentToast,
		Recovery:     RecoveryNone,
		MessageKey:   "errors.generic",
	},
	CodeAborted: {
		Severity:     SeverityInfo,
		Presentation: PresentSilent,
		Recovery:     RecoveryNone,
	},
	CodeNetwork: {
		Severity:     SeverityError,
		Presentation: PresentToast,
		Recovery:     RecoveryNone,
		MessageKey:   "errors.network",
	},
	CodeValidation: {
		Severity:     SeverityWarning,
		Presentation: PresentInline,
		Recovery:     RecoveryNone,
		MessageKey:   "errors.validation",
	},
	CodeDecode: {
		Severity:     SeverityError,
		Presentation: PresentToast,
		Recovery:     RecoveryNone,
		MessageKey:   "errors.generic",
	},
	CodeRateLimited: {
		Severity:     SeverityWarning,
		Presentation: PresentToast,
		Recovery:     RecoveryNone,
		MessageKey:   "chat.rate_limited",
	},
}

func withKey(meta Metadata, key string) Metadata {
	meta.MessageKey = key
	return meta
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeUnknown]
}

// IsAuthCode reports whether the code forces the user back to the login entry point.
func IsAuthCode(code Code) bool {
	return MetadataFor(code).RequiresReauth
}
