package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"github.com/inkwell-notes/inkwell/internal/client/config"
	"github.com/inkwell-notes/inkwell/internal/client/connectivity"
	"github.com/inkwell-notes/inkwell/internal/client/gateway"
	"github.com/inkwell-notes/inkwell/internal/client/services"
	"github.com/inkwell-notes/inkwell/internal/client/session"
	"github.com/inkwell-notes/inkwell/internal/client/storage"
	"github.com/inkwell-notes/inkwell/internal/client/sync"
	"github.com/inkwell-notes/inkwell/internal/filex"
	"github.com/inkwell-notes/inkwell/internal/logging"

	_ "modernc.org/sqlite"
)

var (
	onlineColor  = color.New(color.FgGreen).SprintFunc()
	offlineColor = color.New(color.FgYellow).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
)

// App wires the signed-in session: storage, gateway, sync engine and the
// connectivity monitor. All fields past config/logger/reader are nil until
// SignIn succeeds and are torn down again on SignOut.
type App struct {
	config *config.Config
	logger logging.Logger
	reader *bufio.Reader

	session *session.Session
	gw      gateway.Gateway
	st      *storage.Storage
	engine  *sync.Engine
	svc     services.NoteService
	monitor *connectivity.Monitor

	stopMonitor context.CancelFunc
}

func NewApp(c *config.Config, logger logging.Logger) *App {
	return &App{config: c, logger: logger, reader: bufio.NewReader(os.Stdin)}
}

func (a *App) isSignedIn() bool {
	return a.session != nil
}

// databasePath resolves the reservoir file location. Bare filenames land in
// a "data" subdirectory next to the working directory; explicit paths and
// ":memory:" are used as-is.
func (a *App) databasePath() (string, error) {
	p := a.config.DatabasePath
	if p == ":memory:" || filepath.Dir(p) != "." {
		return p, nil
	}
	dir, err := filex.EnsureSubDir("data")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, p), nil
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to Inkwell CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	_ = a.SignIn(ctx)

	runREPL(ctx, a, a.statusLine, scanner)

	_ = a.teardown()
}

// statusLine renders the prompt decoration: user, reachability, and how many
// local changes still wait for the remote store.
func (a *App) statusLine() string {
	if !a.isSignedIn() {
		return "(signed out) "
	}

	s := a.session.UserID
	if a.monitor != nil {
		if a.monitor.Reachable() {
			s += " " + onlineColor("online")
		} else {
			s += " " + offlineColor("offline")
		}
	}
	if a.engine != nil {
		if st, err := a.engine.Status(context.Background()); err == nil && st.PendingCount > 0 {
			s += fmt.Sprintf(" [%d unsynced]", st.PendingCount)
		}
	}
	return "(" + s + ") "
}

// SignIn reads an access token, derives the session from its claims and
// builds the storage/engine stack. With offline support disabled the app
// runs in passthrough mode: no reservoir, no mutation log, no monitor.
func (a *App) SignIn(ctx context.Context) error {
	if a.isSignedIn() {
		printlnFn("Already signed in. Run 'signout' first.")
		return nil
	}

	token, err := GetAccessToken(os.Stdout)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	sess, err := session.FromAccessToken(token)
	if err != nil {
		printlnFn(errorColor("sign-in failed:"), err)
		return err
	}
	if sess.Expired(time.Now()) {
		printlnFn(offlineColor("warning:"), "access token is expired; the service will reject pushes")
	}

	gw := gateway.NewRESTGateway(a.config.ServiceURL, a.config.APIKey, token, a.logger)

	if !a.config.OfflineEnabled {
		a.session = sess
		a.gw = gw
		a.svc = services.NewPassthroughService(sess.UserID, gw, sync.NewClock())
		printlnFn("Signed in as", sess.UserID, "(passthrough mode, no offline cache)")
		return nil
	}

	dbPath, err := a.databasePath()
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}
	st, err := storage.Open(ctx, dbPath)
	if err != nil {
		printlnFn(errorColor("error opening local database:"), err)
		return err
	}

	engine := sync.New(sess.UserID, st, gw, sync.NewClock(), a.logger)

	a.session = sess
	a.gw = gw
	a.st = st
	a.engine = engine
	a.svc = services.NewNoteService(sess.UserID, st, engine, a.logger)

	mctx, cancel := context.WithCancel(context.Background())
	a.stopMonitor = cancel
	a.monitor = connectivity.NewMonitor(gw, a.config.OnlineCheckInterval, a.config.DrainDebounce, func() {
		if err := engine.Drain(context.Background()); err != nil {
			a.logger.Error(context.Background(), "sync failed", "error", err)
		}
	}, a.logger)
	go a.monitor.Run(mctx)

	printlnFn("Signed in as", sess.UserID)
	return nil
}

// SignOut tears the session down. The local reservoir is kept: unsynced
// edits survive and drain on the next sign-in. Use 'clear' to wipe it.
func (a *App) SignOut(ctx context.Context) error {
	if !a.isSignedIn() {
		printlnFn("Not signed in.")
		return nil
	}
	if err := a.teardown(); err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}
	printlnFn("Signed out.")
	return nil
}

func (a *App) teardown() error {
	if a.stopMonitor != nil {
		a.stopMonitor()
		a.stopMonitor = nil
	}
	var err error
	if a.st != nil {
		err = a.st.Close()
	}
	a.session = nil
	a.gw = nil
	a.st = nil
	a.engine = nil
	a.svc = nil
	a.monitor = nil
	return err
}
