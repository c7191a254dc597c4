package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kevin07696/checkout-kit/internal/checkout"
	"github.com/kevin07696/checkout-kit/internal/validation"
)

func payloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Build a payment request from validated input",
	}

	cmd.PersistentFlags().String("amount", "", "Amount in major units, e.g. 10.50")
	cmd.PersistentFlags().String("currency", "EUR", "ISO 4217 currency code")
	cmd.PersistentFlags().String("reference", "", "Merchant reference, random when empty")

	cmd.AddCommand(payloadCardCmd())
	cmd.AddCommand(payloadSEPACmd())

	return cmd
}

func payloadCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Build a card payment request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := checkout.BuildCardPaymentMethod(validation.NewValidator().ValidateCard(cardInput(cmd)))
			if err != nil {
				return err
			}
			return printPaymentRequest(cmd, method)
		},
	}

	cardFlags(cmd)
	return cmd
}

func payloadSEPACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sepa",
		Short: "Build a SEPA direct debit payment request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			value, _ := cmd.Flags().GetString("iban")

			method, err := checkout.BuildSEPAPaymentMethod(owner, value)
			if err != nil {
				return err
			}
			return printPaymentRequest(cmd, method)
		},
	}

	cmd.Flags().String("owner", "", "Account owner name")
	cmd.Flags().String("iban", "", "Account IBAN")
	return cmd
}

func printPaymentRequest(cmd *cobra.Command, method any) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	value, _ := cmd.Flags().GetString("amount")
	currency, _ := cmd.Flags().GetString("currency")
	reference, _ := cmd.Flags().GetString("reference")

	amount, err := checkout.NewAmount(currency, value)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	req, err := checkout.NewPaymentRequest(method, amount, reference)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	return p.print(req, func(w io.Writer) {
		fmt.Fprintf(w, "Reference: %s\n", req.Reference)
		fmt.Fprintf(w, "Amount:    %s\n", req.Amount)
		raw, _ := json.Marshal(req.PaymentMethod)
		fmt.Fprintf(w, "Method:    %s\n", raw)
	})
}
