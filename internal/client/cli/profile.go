package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/nutrilog/nutrilog/internal/client/models"
	"github.com/nutrilog/nutrilog/internal/common"
)

// ShowProfile prints the profile of the signed-in user from the session
// state. No network call is made; use RefreshProfile for that.
func (a *App) ShowProfile(ctx context.Context) error {
	st := a.state.State()
	if st.User == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	u := st.User

	fmt.Println("Profile")
	fmt.Printf("  Username:        %s\n", u.Username)
	fmt.Printf("  Email:           %s\n", u.Email)
	fmt.Printf("  First name:      %s\n", u.FirstName)
	fmt.Printf("  Last name:       %s\n", u.LastName)
	fmt.Printf("  Date of birth:   %s\n", u.DOB)
	fmt.Printf("  Height:          %s\n", formatFloat(u.Height))
	fmt.Printf("  Current weight:  %s\n", formatFloat(u.CurrWeight))
	fmt.Printf("  Activity level:  %s\n", u.ActivityLevel)
	fmt.Printf("  Unit preference: %s\n", u.UnitPreference)
	return nil
}

// RefreshProfile re-fetches the profile from the server and prints it.
func (a *App) RefreshProfile(ctx context.Context) error {
	if err := a.auth.RefreshUser(ctx); err != nil {
		fmt.Println("Refresh failed:", err)
		return err
	}
	return a.ShowProfile(ctx)
}

// UpdateProfile prompts for profile fields one by one; an empty answer keeps
// the current value. Only the answered fields are sent to the server.
func (a *App) UpdateProfile(ctx context.Context) error {
	var update models.ProfileUpdate

	text := func(prompt string, dst **string) error {
		v, err := getSimpleText(a.reader, prompt+" (empty keeps current)", os.Stdout)
		if err != nil {
			return err
		}
		if v != "" {
			*dst = &v
		}
		return nil
	}
	number := func(prompt string, dst **float64) error {
		v, err := getSimpleText(a.reader, prompt+" (empty keeps current)", os.Stdout)
		if err != nil {
			return err
		}
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fmt.Println("Not a number, field skipped:", v)
			return nil
		}
		*dst = &f
		return nil
	}

	steps := []func() error{
		func() error { return text("First name", &update.FirstName) },
		func() error { return text("Last name", &update.LastName) },
		func() error { return text("Date of birth (YYYY-MM-DD)", &update.DOB) },
		func() error { return number("Height", &update.Height) },
		func() error { return number("Current weight", &update.CurrWeight) },
		func() error { return text("Activity level", &update.ActivityLevel) },
		func() error { return text("Unit preference (metric/imperial)", &update.UnitPreference) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	if update == (models.ProfileUpdate{}) {
		fmt.Println("Nothing to update.")
		return nil
	}

	if err := a.auth.UpdateProfile(ctx, update); err != nil {
		fmt.Println("Update failed:", err)
		return err
	}
	fmt.Println("Profile updated.")
	return nil
}

// ChangePassword prompts for the current and the new password.
func (a *App) ChangePassword(ctx context.Context) error {
	oldPassword, err := getPassword("Current password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := getPassword("New password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	if err := a.auth.ChangePassword(ctx, string(oldPassword), string(newPassword)); err != nil {
		fmt.Println("Password change failed:", err)
		return err
	}
	fmt.Println("Password changed.")
	return nil
}

// DeleteAccount asks for an explicit confirmation and the account password,
// then deletes the account and logs out.
func (a *App) DeleteAccount(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Delete this account permanently? Type 'yes' to confirm", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Println("Aborted.")
		return nil
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.DeleteAccount(ctx, string(password)); err != nil {
		fmt.Println("Account deletion failed:", err)
		return err
	}
	fmt.Println("Account deleted.")
	return nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
