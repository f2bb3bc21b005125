// Package cli provides the procdesk command line interface.
//
// Commands reach the core through driving ports held in package variables.
// The entry point either sets them directly with SetServices or installs a
// Bootstrap function that builds them once flags are parsed.
package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driving"
	"github.com/custodia-labs/procdesk/internal/logger"
)

// EnvAccessKey supplies the access secret without a prompt.
//
//nolint:gosec // G101: environment variable name, not a credential.
const EnvAccessKey = "PROCDESK_ACCESS_KEY"

// defaultUser is recorded when no user name can be determined.
const defaultUser = "operador"

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

var version = "dev"

// Services are the driving ports the commands use.
type Services struct {
	Process  driving.ProcessService
	Ledger   driving.LedgerService
	Sessions driving.SessionGate
	Settings driving.SettingsService

	// Close releases resources held by the services. Optional.
	Close func() error
}

// BootstrapFunc builds services from the configuration directory.
type BootstrapFunc func(ctx context.Context, configDir string) (*Services, error)

var (
	processService  driving.ProcessService
	ledgerService   driving.LedgerService
	sessionGate     driving.SessionGate
	settingsService driving.SettingsService
	closeServices   func() error

	bootstrap BootstrapFunc

	// session is the admitted session for this process.
	session *domain.Session

	// readSecret prompts for the access secret. Replaced in tests.
	readSecret = readPassword
)

var (
	configDir string
	verbose   bool
	accessKey string
	userName  string
)

var rootCmd = &cobra.Command{
	Use:   "procdesk",
	Short: "Run document processes and keep a usage ledger",
	Long: `procdesk runs registered document processes against uploaded files,
packages their deliverables into a zip archive and records every
invocation in a usage ledger.

Every command that touches processes or the ledger requires the shared
access key. Supply it with --access-key, the PROCDESK_ACCESS_KEY
environment variable, or at the prompt.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config", "", "configuration directory (default ~/.procdesk)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	flags.StringVar(&accessKey, "access-key", "", "shared access key")
	flags.StringVarP(&userName, "user", "u", "", "operator name recorded in the ledger (default $USER)")
}

// SetServices installs the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	processService = s.Process
	ledgerService = s.Ledger
	sessionGate = s.Sessions
	settingsService = s.Settings
	closeServices = s.Close
	session = nil
}

// SetBootstrap installs the function that builds services on demand.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases the services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := shutdown(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}
	if processService != nil || bootstrap == nil {
		return nil
	}

	services, err := bootstrap(commandContext(cmd), configDir)
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func shutdown() error {
	if sessionGate != nil && session != nil {
		sessionGate.Logout(session)
		session = nil
	}
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// commandContext returns the command context, or a background one in tests.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// requireSession admits the operator once per run.
func requireSession(cmd *cobra.Command) (*domain.Session, error) {
	if sessionGate == nil {
		return nil, errors.New("session gate not configured")
	}
	if session != nil && sessionGate.Validate(session) == nil {
		return session, nil
	}

	secret := accessKey
	if secret == "" {
		secret = os.Getenv(EnvAccessKey)
	}
	if secret == "" {
		cmd.PrintErr("Clave de acceso: ")
		secret = readSecret()
		cmd.PrintErrln()
	}

	admitted, err := sessionGate.Admit(commandContext(cmd), secret, operatorName())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSecret) {
			return nil, errors.New("clave incorrecta")
		}
		return nil, err
	}

	if sessionGate.UsingDefaultSecret() {
		cmd.PrintErrln("Aviso: se está usando la clave por defecto. Configure APP_PASS.")
	}

	session = admitted
	return session, nil
}

// operatorName returns the --user flag, $USER or the default.
func operatorName() string {
	if userName != "" {
		return userName
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return defaultUser
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// printSummary prints summary labels in sorted order.
func printSummary(cmd *cobra.Command, summary domain.Summary) {
	if len(summary) == 0 {
		return
	}
	cmd.Println("Resumen:")
	for _, key := range summary.Keys() {
		cmd.Printf("  %s: %v\n", key, summary[key])
	}
}
