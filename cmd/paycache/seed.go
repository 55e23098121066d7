package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"paycache/internal/archive"
	"paycache/internal/config"
	"paycache/internal/payments"
)

var seedPSPs = []string{"stripe", "adyen", "braintree", "checkout", "worldpay", "nuvei"}

func seedCmd() *cobra.Command {
	var (
		count   int
		pending float64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a synthetic record snapshot into the configured archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Parse()
			if err != nil {
				return err
			}
			ctx := context.Background()
			ar, err := archive.Open(ctx, cfg.Archive())
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			records := generateRecords(count, pending)
			if err := ar.Replace(ctx, func(w io.Writer) error {
				return payments.EncodeAll(w, records)
			}); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			fmt.Printf("seeded %d records into %s archive\n", len(records), ar.Driver())
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1000, "number of records to generate")
	cmd.Flags().Float64Var(&pending, "pending", 0.6, "fraction of records left in pending status")
	return cmd
}

func generateRecords(count int, pendingFraction float64) []payments.Record {
	now := time.Now().UTC()
	records := make([]payments.Record, 0, count)
	for i := 0; i < count; i++ {
		date := now.AddDate(0, 0, -rand.IntN(90)).Format("2006-01-02")
		rec := payments.Record{
			ID:             uuid.NewString(),
			ProcessingDate: date,
			PSPName:        seedPSPs[rand.IntN(len(seedPSPs))],
			Status:         payments.StatusPending,
		}
		if rand.Float64() >= pendingFraction {
			if rand.IntN(2) == 0 {
				rec.Status = payments.StatusApproved
			} else {
				rec.Status = payments.StatusDeclined
			}
			ts := now.Add(-time.Duration(rand.IntN(86400)) * time.Second)
			rec.StatusUpdatedAt = &ts
		}
		amount, _ := json.Marshal(float64(rand.IntN(100000)) / 100)
		rec.SetExtra("amount", amount)
		currency, _ := json.Marshal("USD")
		rec.SetExtra("currency", currency)
		records = append(records, rec)
	}
	return records
}
