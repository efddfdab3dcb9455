package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ps2id/internal/regiondb"
	"ps2id/internal/serial"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect the region databases",
	}
	dbCmd.AddCommand(newDBStatsCommand(ctx))
	dbCmd.AddCommand(newDBLookupCommand(ctx))
	return dbCmd
}

func newDBStatsCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show entry counts per region",
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
			db, err := ctx.ensureDatabase(logger)
			if err != nil {
				return err
			}

			stats := db.Stats()
			if handled, err := writeStructured(cmd, outFormat, stats); handled {
				return err
			}
			rows := make([][]string, 0, len(stats)+1)
			for _, s := range stats {
				rows = append(rows, []string{s.Region.String(), strconv.Itoa(s.Count), s.Path})
			}
			total := []string{"Total", strconv.Itoa(db.Len()), ""}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(statsColumns, rows, total))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or yaml")
	return cmd
}

type lookupResult struct {
	Serial string          `json:"serial" yaml:"serial"`
	Region regiondb.Region `json:"region" yaml:"region"`
	Title  string          `json:"title" yaml:"title"`
}

func newDBLookupCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "lookup <serial>",
		Short: "Resolve a serial such as SLUS_209.46 or SLUS-20946",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := validateFormat(format)
			if err != nil {
				return err
			}
			normalized := serial.Normalize(args[0])
			if !serial.HasValidPrefix(normalized) {
				return fmt.Errorf("%q does not start with a known PlayStation 2 serial prefix", args[0])
			}
			logger, logCloser, err := ctx.newLogger("")
			if err != nil {
				return err
			}
			defer logCloser.Close()
			db, err := ctx.ensureDatabase(logger)
			if err != nil {
				return err
			}
			region, title, ok := db.Lookup(normalized)
			if !ok {
				return fmt.Errorf("serial %s not found in region databases", normalized)
			}

			result := lookupResult{Serial: normalized, Region: region, Title: title}
			if handled, err := writeStructured(cmd, outFormat, result); handled {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", result.Serial, result.Region, result.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or yaml")
	return cmd
}
