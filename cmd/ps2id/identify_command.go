package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "identify <image>...",
		Short: "Identify one or more disc images",
		Long: "Identify reads each image's filesystem (UDF, then ISO 9660), falls back to a raw byte\n" +
			"scan when neither lists anything, and resolves the embedded serial against the region\n" +
			"databases.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := validateFormat(format)
			if err != nil {
				return err
			}
			logger, logCloser, err := ctx.newLogger("")
			if err != nil {
				return err
			}
			defer logCloser.Close()
			identifier, err := ctx.newIdentifier(logger)
			if err != nil {
				return err
			}

			reports := make([]imageReport, 0, len(args))
			for _, path := range args {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				result, err := identifier.Identify(cmd.Context(), path)
				reports = append(reports, newImageReport(path, result, err))
			}
			if err := renderReports(cmd, outFormat, reports); err != nil {
				return err
			}

			if failed := len(reports) - countIdentified(reports); failed > 0 {
				return fmt.Errorf("%d of %d images not identified", failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or yaml")
	return cmd
}
