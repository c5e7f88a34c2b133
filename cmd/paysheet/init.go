package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	paysheet "github.com/paysheet/paysheet/go"
	"github.com/paysheet/paysheet/go/factory"
)

type initFlags struct {
	clientSecret string
	customerID   string
	ephemeralKey string
	googlePayEnv string
	merchantName string
	countryCode  string
}

func initCmd(global *globalFlags) *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a session and print the result as JSON",
		Long: `Retrieve and validate a PaymentIntent, list the customer's cards and
resolve the pre-selected payment method.

Examples:
  paysheet init --client-secret pi_123_secret_abc
  paysheet init --client-secret pi_123_secret_abc --customer-id cus_123 --ephemeral-key ek_test_123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, global, flags)
		},
	}

	cmd.Flags().StringVar(&flags.clientSecret, "client-secret", "", "PaymentIntent client secret")
	cmd.Flags().StringVar(&flags.customerID, "customer-id", "", "customer id for saved payment methods")
	cmd.Flags().StringVar(&flags.ephemeralKey, "ephemeral-key", "", "customer ephemeral key secret")
	cmd.Flags().StringVar(&flags.googlePayEnv, "google-pay-env", "", "enable Google Pay (test or production)")
	cmd.Flags().StringVar(&flags.merchantName, "merchant-name", "", "merchant display name")
	cmd.Flags().StringVar(&flags.countryCode, "country-code", "", "Google Pay merchant country code")
	_ = cmd.MarkFlagRequired("client-secret")
	cmd.MarkFlagsRequiredTogether("customer-id", "ephemeral-key")

	return cmd
}

func (f *initFlags) request() paysheet.InitRequest {
	req := paysheet.InitRequest{
		ClientSecret:        paysheet.ClientSecret(f.clientSecret),
		MerchantDisplayName: f.merchantName,
	}
	if f.customerID != "" {
		req.Customer = &paysheet.CustomerConfig{ID: f.customerID, EphemeralKeySecret: f.ephemeralKey}
	}
	if f.googlePayEnv != "" {
		req.GooglePay = &paysheet.GooglePayConfig{
			Environment: paysheet.GooglePayEnvironment(f.googlePayEnv),
			CountryCode: f.countryCode,
		}
	}
	return req
}

func runInit(cmd *cobra.Command, global *globalFlags, flags *initFlags) error {
	cfg, logger, err := global.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	initializer, cleanup, err := factory.NewInitializer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	req := flags.request()
	result, err := initializer.Init(ctx, req.ClientSecret, req.Configuration())
	if err != nil {
		return fmt.Errorf("initialization interrupted: %w", err)
	}

	view := paysheet.NewResultView(result)
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(view); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if failure, ok := result.(paysheet.InitFailure); ok {
		return fmt.Errorf("initialization failed: %s", failure.Code())
	}
	return nil
}
