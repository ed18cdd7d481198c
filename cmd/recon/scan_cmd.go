package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldops/salesrecon/modules/recon/domain"
	reconservices "github.com/fieldops/salesrecon/modules/recon/services"
	"github.com/fieldops/salesrecon/pkg/configuration"
	"github.com/fieldops/salesrecon/pkg/sheets"
)

func newScanCmd() *cobra.Command {
	var secondaryPath, ledgerPath string
	var asOfMonth int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Detect organic hierarchy changes from the ledger and backfill attribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, poolCtx, err := loadStore(cmd.Context())
			if err != nil {
				return err
			}

			secondaryRows, ledgerRows, err := readExtracts(secondaryPath, ledgerPath)
			if err != nil {
				return err
			}

			conf := configuration.Use()
			svc := reconservices.NewReconService(store, nil, conf.Logger())
			if asOfMonth < 1 || asOfMonth > 12 {
				return fmt.Errorf("--as-of-month must be 1-12, got %d", asOfMonth)
			}
			stats, err := svc.ScanAndFillLedger(poolCtx, ledgerRows, reconservices.BuildCodeTable(secondaryRows), asOfMonth)
			if err != nil {
				return err
			}
			if err := store.Flush(); err != nil {
				return err
			}

			out := struct {
				Stats     domain.ScanStats      `json:"stats"`
				Integrity domain.IntegrityAlert `json:"integrity"`
			}{stats, svc.CheckIntegrity(ledgerRows)}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&secondaryPath, "secondary", "", "path to the HR/network export workbook")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "path to the ledger workbook")
	cmd.Flags().IntVar(&asOfMonth, "as-of-month", int(time.Now().Month()), "reporting month used for rows without a usable date")
	_ = cmd.MarkFlagRequired("ledger")
	return cmd
}

// readExtracts opens the optional secondary workbook and the required ledger
// workbook.
func readExtracts(secondaryPath, ledgerPath string) ([]domain.SecondaryRow, []*domain.LedgerRow, error) {
	var secondaryRows []domain.SecondaryRow
	if secondaryPath != "" {
		f, err := os.Open(secondaryPath)
		if err != nil {
			return nil, nil, err
		}
		defer func() { _ = f.Close() }()
		secondaryRows, err = sheets.ReadSecondary(f)
		if err != nil {
			return nil, nil, err
		}
	}

	f, err := os.Open(ledgerPath)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()
	ledgerRows, err := sheets.ReadLedger(f)
	if err != nil {
		return nil, nil, err
	}
	return secondaryRows, ledgerRows, nil
}
