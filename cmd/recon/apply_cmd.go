package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldops/salesrecon/modules/recon/domain"
	reconservices "github.com/fieldops/salesrecon/modules/recon/services"
	"github.com/fieldops/salesrecon/pkg/configuration"
)

func newApplyCmd() *cobra.Command {
	var itemsPath string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply operator-confirmed resolutions from a JSON file to the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(itemsPath)
			if err != nil {
				return err
			}
			var items []*domain.DiffItem
			if err := json.Unmarshal(data, &items); err != nil {
				return fmt.Errorf("parse %s: %w", itemsPath, err)
			}

			store, poolCtx, err := loadStore(cmd.Context())
			if err != nil {
				return err
			}

			conf := configuration.Use()
			svc := reconservices.NewReconService(store, nil, conf.Logger())
			changed, err := svc.ApplyResolutions(poolCtx, items)
			if err != nil {
				return err
			}
			fmt.Printf("applied %d of %d items\n", changed, len(items))
			return nil
		},
	}
	cmd.Flags().StringVar(&itemsPath, "items", "", "path to the confirmed diff items JSON")
	_ = cmd.MarkFlagRequired("items")
	return cmd
}
