package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/jvolk/stockroom/internal/api"
	"github.com/jvolk/stockroom/internal/db"
	"github.com/jvolk/stockroom/internal/model"
	"github.com/jvolk/stockroom/internal/notify"
	"github.com/jvolk/stockroom/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("stockroom", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "stockroom.sqlite3", "")
	fs.StringVar(&dbPath, "d", "stockroom.sqlite3", "")

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "")
	fs.StringVar(&addr, "a", ":8080", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: stockroom [flags]

Flags:
  -d, -db <path>          SQLite database path (default: stockroom.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Mail notifications are configured through the environment (or a .env
file): SMTP_HOST, SMTP_PORT, SMTP_FROM, SMTP_PASS. Without SMTP_HOST
notifications are logged instead of sent.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	// Optional .env for SMTP settings. Missing file is fine.
	godotenv.Load()

	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		database, accounts, err := initDatabase(dbPath)
		if err != nil {
			slog.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		database.Close()

		printInitResult(dbPath, accounts)
		fmt.Println()
	}

	database, err := db.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Apply schema and pending migrations (idempotent).
	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", dbPath)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		slog.Error("failed to get JWT secret", "error", err)
		os.Exit(1)
	}

	notifier, err := notify.NewSMTPNotifier()
	if err != nil {
		slog.Error("invalid SMTP configuration", "error", err)
		os.Exit(1)
	}
	var n notify.Notifier
	if notifier != nil {
		slog.Info("mail notifications enabled", "host", os.Getenv("SMTP_HOST"))
		n = notifier
	} else {
		slog.Info("SMTP_HOST not set, notifications will be logged only")
		n = notify.LogNotifier{}
	}

	handler := api.LoggingMiddleware(api.NewRouter(database, jwtSecret, n))

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

// seededAccount is a bootstrap account with its generated password.
type seededAccount struct {
	Role     string
	Email    string
	Password string
}

// initDatabase creates a new database, applies the schema, loads the
// default catalog, and creates the bootstrap admin and store accounts.
func initDatabase(path string) (*sql.DB, []seededAccount, error) {
	fail := func(database *sql.DB, err error) (*sql.DB, []seededAccount, error) {
		if database != nil {
			database.Close()
		}
		os.Remove(path)
		return nil, nil, err
	}

	database, err := db.Open(path)
	if err != nil {
		return fail(nil, fmt.Errorf("opening database: %w", err))
	}

	if err := db.Migrate(database); err != nil {
		return fail(database, fmt.Errorf("applying schema: %w", err))
	}

	if err := db.SeedCatalog(database); err != nil {
		return fail(database, fmt.Errorf("seeding catalog: %w", err))
	}

	bootstrap := []struct {
		empID, email, name, role string
	}{
		{"ADMIN", "admin@localhost", "Admin", model.RoleAdmin},
		{"STORE", "store@localhost", "Store", model.RoleStore},
	}

	ctx := context.Background()
	var accounts []seededAccount
	for _, account := range bootstrap {
		password, err := generatePassword(16)
		if err != nil {
			return fail(database, fmt.Errorf("generating password: %w", err))
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fail(database, fmt.Errorf("hashing password: %w", err))
		}

		if _, err := store.CreateUser(ctx, database, account.empID, account.email, account.name, "", string(hash), account.role); err != nil {
			return fail(database, fmt.Errorf("creating %s account: %w", account.role, err))
		}
		accounts = append(accounts, seededAccount{Role: account.role, Email: account.email, Password: password})
	}

	return database, accounts, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath string, accounts []seededAccount) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized and default catalog loaded.")
	fmt.Println()
	for _, account := range accounts {
		fmt.Printf("%s account created:\n", account.Role)
		fmt.Printf("  Email:    %s\n", account.Email)
		fmt.Printf("  Password: %s\n", account.Password)
		fmt.Println()
	}
	fmt.Println("Save these passwords, they cannot be recovered.")
	fmt.Println("Each account can change its password after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
