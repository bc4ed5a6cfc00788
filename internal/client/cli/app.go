package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/nutrilog/nutrilog/internal/client/api"
	"github.com/nutrilog/nutrilog/internal/client/config"
	"github.com/nutrilog/nutrilog/internal/client/credstore"
	"github.com/nutrilog/nutrilog/internal/client/services"
	"github.com/nutrilog/nutrilog/internal/client/session"
	"github.com/nutrilog/nutrilog/internal/logging"

	_ "modernc.org/sqlite"
)

// App is the interactive client: the session facade plus the terminal I/O
// around it.
type App struct {
	config *config.Config
	auth   services.AuthService
	state  *session.Store
	creds  *credstore.Store
	log    logging.Logger
	reader *bufio.Reader
}

// NewApp wires the credential database, API client, and session facade from
// the given configuration.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewDefault(c.LogLevel)

	creds, err := credstore.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing credential database", "error", err)
		return nil, err
	}

	state := session.NewStore()
	apiClient := api.New(c.APIBaseURL, c.RequestTimeout, creds, log)
	auth := services.NewAuthService(apiClient, creds, state, log)

	return &App{
		config: c,
		auth:   auth,
		state:  state,
		creds:  creds,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores any persisted session and enters the REPL. It blocks until
// the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.creds.Close()

	// Never fails; stale or corrupted credentials resolve to logged out.
	_ = a.auth.InitializeFromStorage(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.state.State().Authenticated
}

func (a *App) getStatus() string {
	st := a.state.State()
	if st.User != nil && st.Authenticated {
		return "(" + st.User.Username + ")"
	}
	return ""
}
