package session

import (
	"context"
	"encoding/json"

	"github.com/angelmondragon/finblog-client/internal/lifecycle"
	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/tidwall/gjson"
)

type resetTokenPayload struct {
	ResetToken        string `json:"resetToken"`
	RemainingAttempts *int   `json:"remainingAttempts"`
}

// ForgotPassword starts the reset flow by mailing a code to email.
func (s *Store) ForgotPassword(ctx context.Context, email string) error {
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, resetTokenPayload]{
		Name:     "forgot_password",
		Fallback: i18n.KeyResetFailed,
		Call: func(ctx context.Context) (resetTokenPayload, error) {
			if err := s.validate.Var("email", email, "required,email"); err != nil {
				return resetTokenPayload{}, err
			}
			resp, err := s.api.Post(ctx, basePath+"/forgot-password", map[string]string{"email": email})
			if err != nil {
				return resetTokenPayload{}, err
			}
			return decodeResetPayload(resp.Envelope.Data)
		},
		Fulfilled: func(st *State, payload resetTokenPayload) {
			st.Reset = initialReset()
			st.Reset.Step = StepVerifyCode
			st.Reset.Email = email
			if payload.RemainingAttempts != nil {
				st.Reset.RemainingAttempts = *payload.RemainingAttempts
			}
		},
	})
	return err
}

// VerifyResetCode checks the mailed code. INVALID_CODE costs one attempt;
// MAX_ATTEMPTS_EXCEEDED and INVALID_OR_EXPIRED_TOKEN restart the flow.
func (s *Store) VerifyResetCode(ctx context.Context, code string) error {
	email := s.Snapshot().Data.Reset.Email
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, resetTokenPayload]{
		Name:     "verify_reset_code",
		Fallback: i18n.KeyResetFailed,
		Call: func(ctx context.Context) (resetTokenPayload, error) {
			if err := s.validate.Var("code", code, "required,len=6,numeric"); err != nil {
				return resetTokenPayload{}, err
			}
			resp, err := s.api.Post(ctx, basePath+"/verify-reset-code", map[string]string{"email": email, "code": code})
			if err != nil {
				return resetTokenPayload{}, err
			}
			return decodeResetPayload(resp.Envelope.Data)
		},
		Fulfilled: func(st *State, payload resetTokenPayload) {
			st.Reset.Step = StepNewPassword
			st.Reset.ResetToken = payload.ResetToken
		},
		Rejected: s.rejectReset,
	})
	return err
}

// ResetPassword completes the flow with the token from VerifyResetCode.
func (s *Store) ResetPassword(ctx context.Context, password string) error {
	flow := s.Snapshot().Data.Reset
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, struct{}]{
		Name:     "reset_password",
		Fallback: i18n.KeyResetFailed,
		Call: func(ctx context.Context) (struct{}, error) {
			if flow.Step != StepNewPassword || flow.ResetToken == "" {
				return struct{}{}, pkgerrors.New(pkgerrors.CodeInvalidOrExpiredToken, s.Translator().T(i18n.KeyInvalidResetToken))
			}
			if err := s.validate.Var("password", password, "required,min=8"); err != nil {
				return struct{}{}, err
			}
			_, err := s.api.Post(ctx, basePath+"/reset-password", map[string]string{
				"resetToken": flow.ResetToken,
				"password":   password,
			})
			return struct{}{}, err
		},
		Fulfilled: func(st *State, _ struct{}) {
			st.Reset = initialReset()
			st.Reset.Completed = true
		},
		Rejected: s.rejectReset,
	})
	return err
}

// RestartReset returns the flow to its first step.
func (s *Store) RestartReset() {
	s.Update(func(st *State) {
		email := st.Reset.Email
		st.Reset = initialReset()
		st.Reset.Email = email
	})
}

func (s *Store) rejectReset(st *State, err *pkgerrors.Error) {
	switch err.Code() {
	case pkgerrors.CodeInvalidCode:
		if remaining, ok := remainingFromDetails(err); ok {
			st.Reset.RemainingAttempts = remaining
		} else if st.Reset.RemainingAttempts > 0 {
			st.Reset.RemainingAttempts--
		}
	case pkgerrors.CodeMaxAttemptsExceeded, pkgerrors.CodeInvalidOrExpiredToken:
		email := st.Reset.Email
		st.Reset = initialReset()
		st.Reset.Email = email
	}
}

// decodeResetPayload reads the optional {resetToken, remainingAttempts} object.
// Data that is not an object carries neither.
func decodeResetPayload(raw json.RawMessage) (resetTokenPayload, error) {
	var payload resetTokenPayload
	if !gjson.ParseBytes(raw).IsObject() {
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode reset payload")
	}
	return payload, nil
}

func remainingFromDetails(err *pkgerrors.Error) (int, bool) {
	var raw []byte
	switch details := err.Details().(type) {
	case json.RawMessage:
		raw = details
	case []byte:
		raw = details
	default:
		return 0, false
	}
	value := gjson.GetBytes(raw, "remainingAttempts")
	if !value.Exists() {
		return 0, false
	}
	return int(value.Int()), true
}
