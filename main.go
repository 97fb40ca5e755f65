package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vetsys/clinic"
	"vetsys/config"
	"vetsys/logging"
)

// errQuit ends the program without an error message.
var errQuit = errors.New("quit")

type app struct {
	cfg *config.Config
	log *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "vetsys",
		Short:         "Veterinary practice record keeper",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runInteractive()
		},
	}
	config.RegisterFlags(root.PersistentFlags())
	root.AddCommand(newAddUserCmd(a), newExportCmd(a), newImportCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	jsonPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(jsonPath, os.Getenv, cmd.Flags())
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	a.cfg, a.log = cfg, log
	return nil
}

func (a *app) newManager() (*clinic.ClinicManager, error) {
	hasher, err := clinic.NewHasher(a.cfg.PasswordScheme)
	if err != nil {
		return nil, err
	}
	return clinic.NewClinicManager(a.cfg.Paths(),
		clinic.WithLogger(a.log),
		clinic.WithHasher(hasher),
		clinic.WithWeekendAppointments(a.cfg.AllowWeekendAppointments),
	), nil
}

// readPassword securely reads a password with masking. Input that is not a
// terminal is read as a plain line.
func readPassword(sc *bufio.Scanner, prompt string) (string, error) {
	fmt.Print(prompt)
	if !term.IsTerminal(int(syscall.Stdin)) {
		if !sc.Scan() {
			return "", errQuit
		}
		return strings.TrimSpace(sc.Text()), nil
	}
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

func (a *app) runInteractive() error {
	mgr, err := a.newManager()
	if err != nil {
		return err
	}
	if len(mgr.Users()) == 0 {
		return fmt.Errorf("no users found in %s, create one with 'vetsys adduser --username NAME --role Admin'", mgr.Paths().Users)
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Welcome to the Veterinary Practice Record Keeper!")

	for {
		user, err := login(scanner, mgr, a.cfg.MaxLoginAttempts)
		if errors.Is(err, errQuit) {
			fmt.Println("Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		sessionLog := a.log.With(slog.String("session", uuid.NewString()), slog.String("user", user.Username))
		mgr.SetLogger(sessionLog)
		s := &session{sc: scanner, mgr: mgr, user: user, log: sessionLog}
		if !s.run() {
			fmt.Println("Goodbye!")
			return nil
		}
		mgr.SetLogger(a.log)
	}
}

// login prompts for credentials up to attempts times.
func login(sc *bufio.Scanner, mgr *clinic.ClinicManager, attempts int) (*clinic.User, error) {
	for left := attempts; left > 0; left-- {
		fmt.Print("\nUsername: ")
		if !sc.Scan() {
			return nil, errQuit
		}
		username := strings.TrimSpace(sc.Text())

		password, err := readPassword(sc, "Password: ")
		if err != nil {
			if errors.Is(err, errQuit) {
				return nil, err
			}
			fmt.Printf("Error reading password: %v\n", err)
			continue
		}

		user, err := mgr.Authenticate(username, password)
		if err == nil {
			fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Role())
			return user, nil
		}
		fmt.Printf("Invalid username or password. Attempts left: %d\n", left-1)
	}
	return nil, fmt.Errorf("too many failed login attempts")
}

func newAddUserCmd(a *app) *cobra.Command {
	var username, role string
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := a.newManager()
			if err != nil {
				return err
			}
			sc := bufio.NewScanner(os.Stdin)
			password, err := readPassword(sc, fmt.Sprintf("Enter password for %s: ", username))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			confirm, err := readPassword(sc, "Confirm password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}
			u, err := mgr.AddUser(username, password, role)
			if err != nil {
				return err
			}
			fmt.Printf("Added user '%s' (%s) with ID %d\n", u.Username, u.Role(), u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&role, "role", "Admin", "Admin, Veterinarian or Staff")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export-sqlite",
		Short: "Copy the CSV data into the SQLite database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := a.newManager()
			if err != nil {
				return err
			}
			db, err := clinic.NewDatabase(a.cfg.SQLitePath, a.log)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := db.Export(mgr.State()); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			printSummary("Exported to "+a.cfg.SQLitePath, mgr.State())
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-sqlite",
		Short: "Rewrite the CSV data from the SQLite database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := a.newManager()
			if err != nil {
				return err
			}
			db, err := clinic.NewDatabase(a.cfg.SQLitePath, a.log)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			st, err := db.Import()
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			if err := mgr.ReplaceState(st); err != nil {
				return fmt.Errorf("write data files: %w", err)
			}
			printSummary("Imported from "+a.cfg.SQLitePath, st)
			return nil
		},
	}
}

func printSummary(title string, st *clinic.State) {
	fmt.Println(title)
	fmt.Printf("%-14s %d\n", "Owners:", len(st.Owners))
	fmt.Printf("%-14s %d\n", "Pets:", len(st.Pets))
	fmt.Printf("%-14s %d\n", "Appointments:", len(st.Appointments))
	fmt.Printf("%-14s %d\n", "Users:", len(st.Users))
}
