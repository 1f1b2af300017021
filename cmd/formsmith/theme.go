package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"golang.org/x/oauth2"

	"github.com/ajramos/formsmith/internal/api"
	"github.com/ajramos/formsmith/internal/render"
	"github.com/ajramos/formsmith/internal/schema"
	"github.com/ajramos/formsmith/internal/style"
)

// readTheme loads a theme file. JSON files hold a bare ThemeConfig, anything
// else is a YAML theme document. "-" reads JSON from stdin.
func readTheme(cmd *cobra.Command, path string) (schema.ThemeConfig, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return schema.ThemeConfig{}, err
		}
		return schema.Decode(data)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.ThemeConfig{}, fmt.Errorf("failed to read theme file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return schema.Decode(data)
	}
	return schema.ParseYAML(data)
}

func newResolveCmd() *cobra.Command {
	var css bool

	cmd := &cobra.Command{
		Use:   "resolve <theme-file>",
		Short: "Print the resolved style of a theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, err := readTheme(cmd, args[0])
			if err != nil {
				return err
			}
			resolved := style.Resolve(schema.Validate(theme))
			if css {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), resolved.CSS())
				return err
			}
			data, err := json.Marshal(resolved)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(pretty.Pretty(data))
			return err
		},
	}

	cmd.Flags().BoolVar(&css, "css", false, "Print the generated stylesheet instead of JSON")
	return cmd
}

func newPreviewCmd(flags *rootFlags) *cobra.Command {
	var (
		width   int
		html    bool
		siteKey string
		remote  bool
	)

	cmd := &cobra.Command{
		Use:   "preview [theme-file]",
		Short: "Draw a theme as text, or write its widget markup",
		Long: "Draw a theme as text, or write its widget markup. With --remote the\n" +
			"theme published for --site-key is fetched from the server.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				theme schema.ThemeConfig
				err   error
			)
			switch {
			case remote && siteKey == "":
				return errors.New("--remote needs --site-key")
			case remote:
				theme, err = fetchPublicTheme(cmd, flags, siteKey)
			case len(args) == 1:
				theme, err = readTheme(cmd, args[0])
			default:
				return errors.New("a theme file or --remote is required")
			}
			if err != nil {
				return err
			}
			if html {
				return render.WriteHTML(cmd.OutOrStdout(), theme, siteKey)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), render.Text(theme, width))
			return err
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 44, "Width of the text preview in columns")
	cmd.Flags().BoolVar(&html, "html", false, "Write the standalone widget HTML")
	cmd.Flags().StringVar(&siteKey, "site-key", "", "Site key embedded in the widget markup")
	cmd.Flags().BoolVar(&remote, "remote", false, "Preview the theme the server publishes for --site-key")
	return cmd
}

// fetchPublicTheme asks the configured server for the theme of siteKey. The
// endpoint is public, so a missing token is not an error.
func fetchPublicTheme(cmd *cobra.Command, flags *rootFlags, siteKey string) (schema.ThemeConfig, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return schema.ThemeConfig{}, err
	}
	src, err := clientTokenSource(cfg, &editOptions{})
	if err != nil {
		src = oauth2.StaticTokenSource(&oauth2.Token{})
	}
	return api.NewClient(cmd.Context(), cfg.Client.BaseURL, src).PublicTheme(cmd.Context(), siteKey)
}

// errLintIssues makes lint exit non-zero when a theme has issues
var errLintIssues = errors.New("theme has issues")

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <theme-file>...",
		Short: "Report attributes the resolver would replace with defaults",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := false
			for _, path := range args {
				theme, err := readTheme(cmd, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				issues := schema.Lint(theme)
				if len(issues) == 0 {
					fmt.Fprintf(out, "%s: ok\n", path)
					continue
				}
				failed = true
				for _, issue := range issues {
					fmt.Fprintf(out, "%s: %s\n", path, issue)
				}
			}
			if failed {
				return errLintIssues
			}
			return nil
		},
	}
}

func newEmbedCmd(flags *rootFlags) *cobra.Command {
	var (
		scriptURL string
		mountID   string
		token     string
	)

	cmd := &cobra.Command{
		Use:   "embed [site-key]",
		Short: "Print the snippet that mounts the widget on a page",
		Long: "Print the snippet that mounts the widget on a page. Without a site key\n" +
			"the key of the configured owner is fetched from the server.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if scriptURL == "" {
				scriptURL = cfg.Server.ScriptURL
			}

			var siteKey string
			if len(args) == 1 {
				siteKey = args[0]
			} else {
				src, err := clientTokenSource(cfg, &editOptions{token: token})
				if err != nil {
					return err
				}
				state, err := api.NewClient(cmd.Context(), cfg.Client.BaseURL, src).FetchTheme(cmd.Context())
				if err != nil {
					return err
				}
				siteKey = state.SiteKey
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), render.EmbedSnippet(scriptURL, siteKey, mountID))
			return err
		},
	}

	cmd.Flags().StringVar(&scriptURL, "script-url", "", "Widget script URL, overriding server.script_url")
	cmd.Flags().StringVar(&mountID, "mount-id", render.DefaultMountID, "Id of the element the widget mounts into")
	cmd.Flags().StringVar(&token, "token", "", "Access token used to look up the site key")
	return cmd
}
