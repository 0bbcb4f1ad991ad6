// Package resetflow drives the three-step password-reset wizard: request an
// OTP for an email, verify the code, then set the new password. The step
// counter only ever advances through a successful remote call, so step 3 is
// unreachable without the temp token minted at step 2.
package resetflow

import (
	"context"
	"regexp"
	"strings"

	"github.com/fitlifeapp/fitlife/internal/client/models"
)

// Step identifies the wizard position.
type Step int

const (
	StepEmail Step = iota + 1
	StepOTP
	StepNewPassword
)

func (s Step) String() string {
	switch s {
	case StepEmail:
		return "email"
	case StepOTP:
		return "otp"
	case StepNewPassword:
		return "new password"
	default:
		return "unknown"
	}
}

// MinPasswordLength is the client-side floor for the replacement password.
const MinPasswordLength = 6

var otpPattern = regexp.MustCompile(`^\d{6}$`)

// Ops is the slice of the session container the wizard needs.
type Ops interface {
	ForgotPassword(ctx context.Context, email string) models.Result[struct{}]
	VerifyOTP(ctx context.Context, email, otp string) models.Result[string]
	ResetPassword(ctx context.Context, email, tempToken, newPassword string) models.Result[struct{}]
}

// Flow is a single pass through the wizard. Not safe for concurrent use;
// each reset attempt gets its own Flow.
type Flow struct {
	ops Ops

	step      Step
	email     string
	tempToken string
	done      bool
}

// New returns a wizard positioned at the email step.
func New(ops Ops) *Flow {
	return &Flow{ops: ops, step: StepEmail}
}

// Step returns the current wizard position.
func (f *Flow) Step() Step { return f.step }

// Email returns the address the flow was started for.
func (f *Flow) Email() string { return f.email }

// Done reports whether the password was successfully reset.
func (f *Flow) Done() bool { return f.done }

// SubmitEmail runs step 1: request an OTP for email. On success the wizard
// advances to the OTP step.
func (f *Flow) SubmitEmail(ctx context.Context, email string) models.Result[struct{}] {
	if f.step != StepEmail {
		return models.Fail[struct{}]("Not at the email step")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return models.Fail[struct{}]("Email is required")
	}

	res := f.ops.ForgotPassword(ctx, email)
	if !res.Success {
		return res
	}

	f.email = email
	f.step = StepOTP
	return res
}

// SubmitOTP runs step 2: verify the code. Codes that are not exactly 6
// digits are rejected without a remote call. On success the temp token is
// captured and the wizard advances to the password step.
func (f *Flow) SubmitOTP(ctx context.Context, otp string) models.Result[struct{}] {
	if f.step != StepOTP {
		return models.Fail[struct{}]("Not at the OTP step")
	}
	if !otpPattern.MatchString(otp) {
		return models.Fail[struct{}]("OTP must be 6 digits")
	}

	res := f.ops.VerifyOTP(ctx, f.email, otp)
	if !res.Success {
		return models.Result[struct{}]{Success: false, Message: res.Message, Error: res.Error}
	}

	f.tempToken = res.Data
	f.step = StepNewPassword
	return models.OkMsg(struct{}{}, res.Message)
}

// SubmitNewPassword runs step 3: set the replacement password. The password
// and its confirmation must match and meet the length floor. On success the
// flow is done and cannot be reused.
func (f *Flow) SubmitNewPassword(ctx context.Context, password, confirm string) models.Result[struct{}] {
	if f.step != StepNewPassword {
		return models.Fail[struct{}]("Not at the password step")
	}
	if len(password) < MinPasswordLength {
		return models.Fail[struct{}]("Password must be at least 6 characters")
	}
	if password != confirm {
		return models.Fail[struct{}]("Passwords do not match")
	}
	if f.tempToken == "" {
		return models.Fail[struct{}]("Missing verification token")
	}

	res := f.ops.ResetPassword(ctx, f.email, f.tempToken, password)
	if !res.Success {
		return res
	}

	f.done = true
	f.tempToken = ""
	return res
}

// StartOver returns the wizard from the OTP step back to the email step,
// discarding the pending email. It is a no-op anywhere else: once a code has
// been verified the flow only moves forward.
func (f *Flow) StartOver() {
	if f.step != StepOTP {
		return
	}
	f.step = StepEmail
	f.email = ""
}
