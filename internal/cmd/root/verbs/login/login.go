package login

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/session"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
	"golang.org/x/term"
)

const (
	Verb            = verbs.Login
	buyerIDFlagName = "buyer-id"
)

var (
	loginUse = Verb.String()

	loginShort = i18n.T("root.verbs.login.loginShort", "Store a storefront session")

	loginLong = normalizers.LongDesc(i18n.T("root.verbs.login.loginLong",
		fmt.Sprintf(`Use login to save the bearer token used for every storefront request.

The token is read from --%[1]s or prompted for. It is stored in the session
backend of the active profile (a private file next to the config file, or
the operating system keyring when session.backend is "keyring").`, common.TokenFlagName)))

	loginExamples = normalizers.Examples(i18n.T("root.verbs.login.loginExamples",
		fmt.Sprintf(`
		# Prompt for the token
		%[1]s login
		# Non interactive, as a buyer
		%[1]s login --token "$STOREFRONT_TOKEN" --buyer-id 7
		# Read the token from a pipe
		echo "$STOREFRONT_TOKEN" | %[1]s login
		`, meta.CLIName)))
)

func NewLoginCmd() (*cobra.Command, error) {
	var buyerID string
	c := &cobra.Command{
		Use:     loginUse,
		Short:   loginShort,
		Long:    loginLong,
		Example: loginExamples,
		Args:    cobra.NoArgs,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmd.BuildHelper(c, args), buyerID)
		},
	}
	c.Flags().StringVar(&buyerID, buyerIDFlagName, "",
		"Buyer id used by buyer scoped pages such as wishlists.")
	return c, nil
}

func run(helper cmd.Helper, buyerID string) error {
	store, err := helper.GetSessionStore()
	if err != nil {
		return err
	}

	token, err := readToken(helper)
	if err != nil {
		return err
	}
	if err := session.Login(store, token, buyerID); err != nil {
		return cmd.PrepareExecutionErrorWithHelper(helper, "failed to store session", err)
	}

	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	if logger, err := helper.GetLogger(); err == nil {
		logger.Info("session stored", "profile", cfg.GetProfile())
	}
	fmt.Fprintf(helper.GetStreams().Out, "Logged in (profile %q)\n", cfg.GetProfile())
	return nil
}

func readToken(helper cmd.Helper) (string, error) {
	if f := helper.GetCmd().Flags().Lookup(common.TokenFlagName); f != nil && f.Changed {
		return strings.TrimSpace(f.Value.String()), nil
	}

	streams := helper.GetStreams()
	if file, ok := streams.In.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(streams.Out, "Storefront token: ")
		secret, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(streams.Out)
		if err != nil {
			return "", cmd.PrepareExecutionErrorWithHelper(helper, "failed to read token", err)
		}
		return validToken(string(secret))
	}

	line, err := bufio.NewReader(streams.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", cmd.PrepareExecutionErrorWithHelper(helper, "failed to read token", err)
	}
	return validToken(line)
}

func validToken(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", &cmd.ConfigurationError{Err: session.ErrNoToken}
	}
	return token, nil
}
