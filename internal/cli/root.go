// Package cli implements the dealsctl command tree on top of pkg/client.
package cli

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/angelmondragon/buzdealz-backend/pkg/client"
	"github.com/angelmondragon/buzdealz-backend/pkg/env"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	APIURL      string
	SessionPath string
	Format      string // "text" | "json" | "yaml"
	Verbose     bool
	Timeout     time.Duration

	// HTTPClient is used instead of a default client when set.
	HTTPClient *http.Client
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the dealsctl root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dealsctl",
		Short:         "Browse BuzDealz deals and manage your wishlist",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.APIURL, "api", env.Get("BUZDEALZ_API_URL", client.DefaultBaseURL), "API base URL")
	cmd.PersistentFlags().StringVar(&opts.SessionPath, "session", env.Get("BUZDEALZ_SESSION_FILE", client.DefaultSessionPath()), "session file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "per-request timeout")

	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newRegisterCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newWhoamiCommand(opts))
	cmd.AddCommand(newDealsCommand(opts))
	cmd.AddCommand(newWishlistCommand(opts))

	return cmd
}

// app is the per-invocation wiring of session, API client and sync layer.
type app struct {
	opts *RootOptions
	api  *client.APIClient
	sync *client.WishlistSync
	out  *OutputFormatter
}

func openApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	session := client.NewSession(client.NewFileStore(opts.SessionPath))
	if err := session.Restore(); err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot read session", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	api, err := client.NewAPIClient(session, client.WithBaseURL(opts.APIURL), client.WithHTTPClient(httpClient))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot build client", err)
	}

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	notices := client.WriterNotifier{Out: out.NoticeWriter(), Verbose: opts.Verbose}
	sync, err := client.NewWishlistSync(api, client.NewQueryCache(), notices)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot build sync", err)
	}

	return &app{opts: opts, api: api, sync: sync, out: out}, nil
}

// requireSession fails fast for commands that need a signed-in user.
func (a *app) requireSession() error {
	if !a.api.Session().Authenticated() {
		return NewExitError(ExitFailure, "not logged in; run `dealsctl login` first")
	}
	return nil
}
