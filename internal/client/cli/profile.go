package cli

import (
	"context"
	"fmt"
	"os"
)

// Whoami prints the current member's identity and locally stored profile
// record.
func (a *App) Whoami(ctx context.Context) error {
	user := a.session.CurrentUser()
	if user == nil {
		printlnFn("Not signed in")
		return nil
	}

	printlnFn("ID:      ", user.ID)
	printlnFn("Email:   ", user.Email)
	printlnFn("Name:    ", user.DisplayName)
	printlnFn("Type:    ", string(user.UserType))
	if user.PhotoURL != "" {
		printlnFn("Photo:   ", user.PhotoURL)
	}

	if res := a.profile.GetUserData(ctx, user.ID); res.Success {
		printlnFn("Profile updated:", res.Data.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// EditProfile prompts for new profile values; empty input keeps the current
// value.
func (a *App) EditProfile(ctx context.Context) error {
	user := a.session.CurrentUser()
	if user == nil {
		printlnFn("Not signed in")
		return nil
	}

	name, err := getSimpleText(a.reader, fmt.Sprintf("Display name [%s]", user.DisplayName), os.Stdout)
	if err != nil {
		return err
	}

	partial := map[string]any{}
	if name != "" && name != user.DisplayName {
		partial["displayName"] = name
	}
	if len(partial) == 0 {
		printlnFn("Nothing to change")
		return nil
	}

	res := a.session.UpdateProfile(ctx, partial)
	if !res.Success {
		printlnFn(res.Error)
		return nil
	}

	printlnFn("Profile updated")
	return nil
}

// UploadPhoto reads an image file from disk and attaches it to the profile,
// printing upload progress as it goes.
func (a *App) UploadPhoto(ctx context.Context) error {
	user := a.session.CurrentUser()
	if user == nil {
		printlnFn("Not signed in")
		return nil
	}

	path, err := getSimpleText(a.reader, "Path to image file", os.Stdout)
	if err != nil {
		return err
	}

	last := -1
	res := a.profile.UploadProfilePhoto(ctx, user.ID, path, func(percent int) {
		if percent != last {
			last = percent
			printlnFn(fmt.Sprintf("Uploading... %d%%", percent))
		}
	})
	if !res.Success {
		printlnFn(res.Error)
		return nil
	}

	// keep the server profile and the in-memory user in sync
	if sync := a.session.UpdateProfile(ctx, map[string]any{"photoURL": res.Data}); !sync.Success {
		printlnFn("Photo stored locally, but syncing the profile failed:", sync.Error)
		return nil
	}
	printlnFn("Photo uploaded")
	return nil
}
