package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imgajeed76/sheetview/internal/ui/styles"
	"github.com/imgajeed76/sheetview/internal/util"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sheetview [file]",
	Short: "Browse, filter, sort and edit tabular data in the terminal",
	Long: `sheetview loads a list of records (JSON, JSON Lines, YAML, CSV or a
PostgreSQL query) and shows it as an interactive table.

Every column can be filtered by free text and sorted ascending or
descending. Cells are edited in place; edits stay in memory and can be
reviewed in the changes panel or printed on exit.

Running 'sheetview <file>' is the same as 'sheetview view <file>'.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		// Check if it's a structured SheetError
		var sheetErr *util.SheetError
		if errors.As(err, &sheetErr) {
			fmt.Fprintln(os.Stderr, sheetErr.Format())
		} else {
			// Simple error - still format nicely
			fmt.Fprintln(os.Stderr, styles.ErrorMsg(err.Error()))
		}
		return err
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("log-file", "", "Write debug logs to this file")

	// The root command doubles as `view`
	addDisplayFlags(rootCmd)
	addFormatFlag(rootCmd)

	// Version flag template to show more info
	rootCmd.SetVersionTemplate(fmt.Sprintf("sheetview version %s\n  commit: %s\n  built:  %s\n", Version, CommitSHA, BuildDate))

	// Set up pre-run to handle global flags
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		noColor, _ := cmd.Flags().GetBool("no-color")
		if noColor {
			styles.SetNoColor(true)
		}
	}

	// Add all subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newViewCmd(),
		newSQLCmd(),
		newConfigCmd(),
		newCompletionCmd(),
	)
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return runView(cmd, args)
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sheetview.

To load completions:

Bash:
  $ source <(sheetview completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ sheetview completion bash > /etc/bash_completion.d/sheetview
  # macOS:
  $ sheetview completion bash > $(brew --prefix)/etc/bash_completion.d/sheetview

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ sheetview completion zsh > "${fpath[1]}/_sheetview"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ sheetview completion fish | source

  # To load completions for each session, execute once:
  $ sheetview completion fish > ~/.config/fish/completions/sheetview.fish

PowerShell:
  PS> sheetview completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> sheetview completion powershell > sheetview.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sheetview version %s\n", Version)
			fmt.Fprintf(out, "  commit: %s\n", CommitSHA)
			fmt.Fprintf(out, "  built:  %s\n", BuildDate)
		},
	}
}
