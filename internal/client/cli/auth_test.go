package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/nutrilog/nutrilog/internal/client/models"
	"github.com/nutrilog/nutrilog/internal/client/session"
)

// stubInputs replaces the interactive input seams with canned answers.
// Text prompts are answered from texts in order (the last one repeats);
// password prompts are answered from passwords the same way.
func stubInputs(t *testing.T, texts []string, passwords [][]byte) func() {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	ti, pi := 0, 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		v := texts[ti]
		if ti < len(texts)-1 {
			ti++
		}
		return v, nil
	}
	getPassword = func(_ string, _ io.Writer) ([]byte, error) {
		v := passwords[pi]
		if pi < len(passwords)-1 {
			pi++
		}
		return append([]byte(nil), v...), nil
	}
	return func() {
		getSimpleText = origST
		getPassword = origGP
	}
}

type fakeAuthService struct {
	loginCreds   *models.LoginCredentials
	loginErr     error
	registerData *models.RegisterData
	registerErr  error
	logoutCalled bool
	updateData   *models.ProfileUpdate
	updateErr    error
	oldPassword  string
	newPassword  string
	deletePass   string
	deleteErr    error
	refreshed    bool
	initialized  bool
}

func (f *fakeAuthService) Login(_ context.Context, creds models.LoginCredentials) error {
	f.loginCreds = &creds
	return f.loginErr
}
func (f *fakeAuthService) Register(_ context.Context, data models.RegisterData) error {
	f.registerData = &data
	return f.registerErr
}
func (f *fakeAuthService) Logout(context.Context) error {
	f.logoutCalled = true
	return nil
}
func (f *fakeAuthService) RefreshUser(context.Context) error {
	f.refreshed = true
	return nil
}
func (f *fakeAuthService) UpdateProfile(_ context.Context, update models.ProfileUpdate) error {
	f.updateData = &update
	return f.updateErr
}
func (f *fakeAuthService) ChangePassword(_ context.Context, oldPassword, newPassword string) error {
	f.oldPassword, f.newPassword = oldPassword, newPassword
	return nil
}
func (f *fakeAuthService) DeleteAccount(_ context.Context, password string) error {
	f.deletePass = password
	return f.deleteErr
}
func (f *fakeAuthService) InitializeFromStorage(context.Context) error {
	f.initialized = true
	return nil
}

func newTestApp(f *fakeAuthService) *App {
	return &App{auth: f, state: session.NewStore()}
}

func TestRegister_PassesEnteredData(t *testing.T) {
	f := &fakeAuthService{}
	a := newTestApp(f)

	restore := stubInputs(t, []string{"alice", "alice@example.org"}, [][]byte{[]byte("secret123"), []byte("secret123")})
	defer restore()

	if err := a.Register(context.Background()); err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if f.registerData == nil {
		t.Fatal("Register not called")
	}
	if f.registerData.Username != "alice" || f.registerData.Email != "alice@example.org" {
		t.Fatalf("Register data mismatch: %+v", f.registerData)
	}
	if f.registerData.Password1 != "secret123" || f.registerData.Password2 != "secret123" {
		t.Fatalf("Register passwords mismatch: %+v", f.registerData)
	}
}

func TestLogin_PassesEnteredCredentials(t *testing.T) {
	f := &fakeAuthService{}
	a := newTestApp(f)

	restore := stubInputs(t, []string{"alice"}, [][]byte{[]byte("secret123")})
	defer restore()

	if err := a.Login(context.Background()); err != nil {
		t.Fatalf("Login err: %v", err)
	}
	if f.loginCreds == nil || f.loginCreds.Username != "alice" || f.loginCreds.Password != "secret123" {
		t.Fatalf("Login creds mismatch: %+v", f.loginCreds)
	}
}

func TestLogin_ErrorPropagates(t *testing.T) {
	f := &fakeAuthService{loginErr: errors.New("bad credentials")}
	a := newTestApp(f)

	restore := stubInputs(t, []string{"alice"}, [][]byte{[]byte("nope")})
	defer restore()

	if err := a.Login(context.Background()); err == nil {
		t.Fatal("want error from Login")
	}
}

func TestLogout_CallsService(t *testing.T) {
	f := &fakeAuthService{}
	a := newTestApp(f)

	if err := a.Logout(context.Background()); err != nil {
		t.Fatalf("Logout err: %v", err)
	}
	if !f.logoutCalled {
		t.Fatal("Logout not forwarded to the service")
	}
}

func TestUpdateProfile_OnlyAnsweredFieldsAreSent(t *testing.T) {
	f := &fakeAuthService{}
	a := newTestApp(f)

	// first name and height answered, everything else left empty
	restore := stubInputs(t, []string{"Alice", "", "", "170.5", "", "", ""}, [][]byte{nil})
	defer restore()

	if err := a.UpdateProfile(context.Background()); err != nil {
		t.Fatalf("UpdateProfile err: %v", err)
	}
	if f.updateData == nil {
		t.Fatal("UpdateProfile not called")
	}
	if f.updateData.FirstName == nil || *f.updateData.FirstName != "Alice" {
		t.Fatalf("first name mismatch: %+v", f.updateData)
	}
	if f.updateData.Height == nil || *f.updateData.Height != 170.5 {
		t.Fatalf("height mismatch: %+v", f.updateData)
	}
	if f.updateData.LastName != nil || f.updateData.CurrWeight != nil {
		t.Fatalf("unanswered fields must stay nil: %+v", f.updateData)
	}
}

func TestUpdateProfile_AllEmptySkipsServiceCall(t *testing.T) {
	f := &fakeAuthService{}
	a := newTestApp(f)

	restore := stubInputs(t, []string{""}, [][]byte{nil})
	defer restore()

	if err := a.UpdateProfile(context.Background()); err != nil {
		t.Fatalf("UpdateProfile err: %v", err)
	}
	if f.updateData != nil {
		t.Fatalf("unexpected service call: %+v", f.updateData)
	}
}

func TestChangePassword_PassesBothPasswords(t *testing.T) {
	f := &fakeAuthService{}
	a := newTestApp(f)

	restore := stubInputs(t, []string{""}, [][]byte{[]byte("old-pass"), []byte("new-pass")})
	defer restore()

	if err := a.ChangePassword(context.Background()); err != nil {
		t.Fatalf("ChangePassword err: %v", err)
	}
	if f.oldPassword != "old-pass" || f.newPassword != "new-pass" {
		t.Fatalf("passwords mismatch: %q %q", f.oldPassword, f.newPassword)
	}
}

func TestDeleteAccount_RequiresConfirmation(t *testing.T) {
	f := &fakeAuthService{}
	a := newTestApp(f)

	restore := stubInputs(t, []string{"no"}, [][]byte{[]byte("secret123")})
	defer restore()

	if err := a.DeleteAccount(context.Background()); err != nil {
		t.Fatalf("DeleteAccount err: %v", err)
	}
	if f.deletePass != "" {
		t.Fatal("service must not be called without confirmation")
	}
}

func TestDeleteAccount_ConfirmedPassesPassword(t *testing.T) {
	f := &fakeAuthService{}
	a := newTestApp(f)

	restore := stubInputs(t, []string{"yes"}, [][]byte{[]byte("secret123")})
	defer restore()

	if err := a.DeleteAccount(context.Background()); err != nil {
		t.Fatalf("DeleteAccount err: %v", err)
	}
	if f.deletePass != "secret123" {
		t.Fatalf("password mismatch: %q", f.deletePass)
	}
}
