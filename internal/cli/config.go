package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imgajeed76/sheetview/internal/config"
	"github.com/imgajeed76/sheetview/internal/ui/styles"
	"github.com/imgajeed76/sheetview/internal/util"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "Get and set sheetview options",
		Long: `Get and set options in the sheetview config file.

Available keys:

` + config.GenerateHelpText() + `

Examples:
  sheetview config view.debounce_ms          # Get value
  sheetview config view.debounce_ms 300      # Set value
  sheetview config --list                    # List all config
  sheetview config --path                    # Show the config file`,
		Args: cobra.MaximumNArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ListKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: runConfig,
	}

	cmd.Flags().BoolP("list", "l", false, "List all configuration")
	cmd.Flags().Bool("path", false, "Print the config file path")

	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	listAll, _ := cmd.Flags().GetBool("list")
	showPath, _ := cmd.Flags().GetBool("path")

	if showPath {
		fmt.Fprintln(out, config.Path())
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return util.NewError("Cannot read config").
			WithContext(config.Path()).
			WithMessage(err.Error()).
			Wrap(err)
	}

	if listAll {
		for _, key := range config.ListKeys() {
			value, _ := cfg.GetValue(key)
			fmt.Fprintf(out, "%s=%s\n", key, value)
		}
		return nil
	}

	if len(args) == 0 {
		return util.MissingArgumentError("key", "sheetview config --list")
	}

	key := args[0]
	if len(args) == 1 {
		value, ok := cfg.GetValue(key)
		if !ok {
			return util.NewError(fmt.Sprintf("Unknown config key '%s'", key)).
				WithSuggestion("sheetview config --list").
				Wrap(util.ErrUnknownConfigKey)
		}
		fmt.Fprintln(out, value)
		return nil
	}

	if err := cfg.SetValue(key, args[1]); err != nil {
		var sheetErr *util.SheetError
		if errors.As(err, &sheetErr) {
			return err
		}
		return util.NewError(fmt.Sprintf("Invalid value for '%s'", key)).
			WithMessage(err.Error()).
			Wrap(err)
	}
	if err := cfg.Save(); err != nil {
		return util.NewError("Cannot write config").
			WithContext(config.Path()).
			Wrap(err)
	}

	fmt.Fprintln(out, styles.SuccessMsg(fmt.Sprintf("Set %s = %s", key, args[1])))
	return nil
}
