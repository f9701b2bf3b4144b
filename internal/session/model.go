package session

import "time"

type User struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	Avatar     string    `json:"avatar,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

func (u User) Identity() string { return u.ID }

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type Registration struct {
	Name     string `json:"name" validate:"required,min=2,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type Profile struct {
	Name   string `json:"name,omitempty" validate:"omitempty,min=2,max=60"`
	Bio    string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Avatar string `json:"avatar,omitempty" validate:"omitempty,url"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,nefield=CurrentPassword"`
}

// ResetStep is the position in the three-step password reset flow.
type ResetStep int

const (
	StepRequestCode ResetStep = iota + 1
	StepVerifyCode
	StepNewPassword
)

// DefaultResetAttempts is used when the server does not report a count.
const DefaultResetAttempts = 3

type ResetFlow struct {
	Step              ResetStep `json:"step"`
	Email             string    `json:"email,omitempty"`
	ResetToken        string    `json:"-"`
	RemainingAttempts int       `json:"remainingAttempts"`
	Completed         bool      `json:"completed"`
}

func initialReset() ResetFlow {
	return ResetFlow{Step: StepRequestCode, RemainingAttempts: DefaultResetAttempts}
}

type State struct {
	User                *User     `json:"user"`
	IsLoggedIn          bool      `json:"isLoggedIn"`
	VerificationPending bool      `json:"verificationPending"`
	Reset               ResetFlow `json:"reset"`
}

func initialState() State {
	return State{Reset: initialReset()}
}
