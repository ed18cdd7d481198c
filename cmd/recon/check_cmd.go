package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldops/salesrecon/pkg/sheets"

	reconservices "github.com/fieldops/salesrecon/modules/recon/services"
)

func newCheckCmd() *cobra.Command {
	var ledgerPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report ledger rows still missing manager or director attribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(ledgerPath)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			rows, err := sheets.ReadLedger(f)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(reconservices.CheckIntegrity(rows))
		},
	}
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "path to the ledger workbook")
	_ = cmd.MarkFlagRequired("ledger")
	return cmd
}
