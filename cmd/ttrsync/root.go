package main

import (
	"github.com/spf13/cobra"

	"ttrsync/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags syncFlags

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "ttrsync [flags] STREAM...",
		Short: "Mirror TETR.IO replay streams into a directory",
		Long: "ttrsync downloads every replay listed in the given streams into a directory,\n" +
			"skipping files that are already present. With --remove it also deletes\n" +
			"replay files that none of the streams list anymore.",
		Example: "  ttrsync -C ~/replays user_league_5f7a\n" +
			"  ttrsync -r -v user_blitz_5f7a user_40l_5f7a",
		Version:       config.Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.removeSet = cmd.Flags().Changed("remove")
			return runSync(cmd, ctx, flags, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&flags.directory, "directory", "C", "", "Directory to sync replays into (default from config, else the current directory)")
	rootCmd.Flags().BoolVarP(&flags.remove, "remove", "r", false, "Remove replay files no stream lists anymore")
	rootCmd.Flags().CountVarP(&flags.verbose, "verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	rootCmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "Show what would be downloaded and removed without changing anything")
	rootCmd.Flags().StringVar(&flags.logFormat, "log-format", "", "Log output format (console or json)")

	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
