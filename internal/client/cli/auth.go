package cli

import (
	"context"
	"os"

	"github.com/fitlifeapp/fitlife/internal/client/resetflow"
	"github.com/fitlifeapp/fitlife/internal/client/session"
	"github.com/fitlifeapp/fitlife/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for the new member's details and creates the account. The
// session is live immediately on success.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}

	userType, err := getSimpleText(a.reader, "Account type (athlete/coach/nutritionist)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Signup(ctx, email, string(password), session.SignupData{
		Name:     name,
		UserType: userType,
	})
	if !res.Success {
		printlnFn(res.Error)
		return nil
	}

	printlnFn("Welcome to FitLife,", res.Data.DisplayName+"!")
	return nil
}

// Login prompts for credentials and authenticates.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Login(ctx, email, string(password))
	if !res.Success {
		printlnFn(res.Error)
		return nil
	}

	printlnFn("Logged in as", res.Data.Email)
	return nil
}

// Logout ends the session. It cannot fail from the member's point of view.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Logged out")
	return nil
}

// ResetPassword walks the three-step reset wizard: email, OTP, new password.
// A wrong code offers one chance to start over with a different email.
func (a *App) ResetPassword(ctx context.Context) error {
	flow := resetflow.New(a.session)

	email, err := getSimpleText(a.reader, "Enter your account email", os.Stdout)
	if err != nil {
		return err
	}
	if res := flow.SubmitEmail(ctx, email); !res.Success {
		printlnFn(res.Error)
		return nil
	}
	printlnFn("A 6-digit code has been sent to", flow.Email())

	for flow.Step() == resetflow.StepOTP {
		otp, err := getSimpleText(a.reader, "Enter the code (or 'back' to use another email)", os.Stdout)
		if err != nil {
			return err
		}
		if otp == "back" {
			flow.StartOver()
			printlnFn("Reset cancelled")
			return nil
		}
		if res := flow.SubmitOTP(ctx, otp); !res.Success {
			printlnFn(res.Error)
		}
	}

	for !flow.Done() {
		password, err := getPassword("New password", os.Stdout)
		if err != nil {
			return err
		}
		confirm, err := getPassword("Confirm new password", os.Stdout)
		if err != nil {
			common.WipeByteArray(password)
			return err
		}

		res := flow.SubmitNewPassword(ctx, string(password), string(confirm))
		common.WipeByteArray(password)
		common.WipeByteArray(confirm)
		if !res.Success {
			printlnFn(res.Error)
			continue
		}
		printlnFn(res.Message)
	}

	return nil
}
