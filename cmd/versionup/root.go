package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var timelineFlag string
	var trackFlag string

	ctx := newCommandContext(&configFlag, &timelineFlag, &trackFlag)

	rootCmd := &cobra.Command{
		Use:           "versionup",
		Short:         "Relink timeline clips to their newest compatible shot versions",
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
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&timelineFlag, "timeline", "", "Timeline export to work on (overrides timeline.path)")
	rootCmd.PersistentFlags().StringVarP(&trackFlag, "track", "t", "", `Video track name or index, or "all"`)

	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newUpdateCommand(ctx))
	rootCmd.AddCommand(newPlansCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
