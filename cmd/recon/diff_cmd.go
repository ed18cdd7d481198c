package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	reconservices "github.com/fieldops/salesrecon/modules/recon/services"
	"github.com/fieldops/salesrecon/pkg/configuration"
)

func newDiffCmd() *cobra.Command {
	var secondaryPath, ledgerPath string

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Reconcile the roster against the HR extract and ledger, printing the diff report",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := loadStore(cmd.Context())
			if err != nil {
				return err
			}

			secondaryRows, ledgerRows, err := readExtracts(secondaryPath, ledgerPath)
			if err != nil {
				return err
			}

			conf := configuration.Use()
			svc := reconservices.NewReconService(store, nil, conf.Logger())
			result := svc.ExtractDiff(store.Records(), secondaryRows, ledgerRows)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&secondaryPath, "secondary", "", "path to the HR/network export workbook")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "path to the ledger workbook")
	_ = cmd.MarkFlagRequired("ledger")
	return cmd
}
