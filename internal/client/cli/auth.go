package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/nutrilog/nutrilog/internal/client/models"
	"github.com/nutrilog/nutrilog/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for account details and attempts to create a new
// account via the session facade. The backend checks that the two password
// entries match.
//
// Password byte slices are securely wiped before returning. Any I/O or
// service error is returned unchanged.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password1, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password1)

	password2, err := getPassword("Repeat password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password2)

	data := models.RegisterData{
		Username:  username,
		Email:     email,
		Password1: string(password1),
		Password2: string(password2),
	}
	if err := a.auth.Register(ctx, data); err != nil {
		fmt.Println("Registration failed:", err)
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts the user for credentials and tries to authenticate. On
// success the session facade persists the credential pair and the prompt
// status switches to the signed-in user.
//
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	creds := models.LoginCredentials{Username: username, Password: string(password)}
	if err := a.auth.Login(ctx, creds); err != nil {
		fmt.Println("Login failed:", err)
		return err
	}

	fmt.Println("Logged in.")
	return nil
}

// Logout logs the session out. Server-side invalidation is best effort, so
// this never fails from the user's point of view.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}
