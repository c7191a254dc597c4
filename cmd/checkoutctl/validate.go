package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kevin07696/checkout-kit/internal/domain"
	"github.com/kevin07696/checkout-kit/internal/iban"
	"github.com/kevin07696/checkout-kit/internal/validation"
)

// cardReport leaves out the normalized number and security code
type cardReport struct {
	Valid        bool                    `json:"valid" yaml:"valid"`
	Brand        domain.CardBrand        `json:"brand,omitempty" yaml:"brand,omitempty"`
	Number       domain.Validity         `json:"number" yaml:"number"`
	ExpiryDate   domain.ExpiryDateResult `json:"expiryDate" yaml:"expiryDate"`
	SecurityCode domain.Validity         `json:"securityCode" yaml:"securityCode"`
	HolderName   domain.ValidationResult `json:"holderName" yaml:"holderName"`
}

type ibanReport struct {
	Validity  domain.Validity `json:"validity" yaml:"validity"`
	Formatted string          `json:"formatted,omitempty" yaml:"formatted,omitempty"`
	Masked    string          `json:"masked,omitempty" yaml:"masked,omitempty"`
	SEPA      bool            `json:"sepa" yaml:"sepa"`
	IBAN      *iban.IBAN      `json:"iban,omitempty" yaml:"iban,omitempty"`
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate card or bank account input",
	}

	cmd.AddCommand(validateCardCmd())
	cmd.AddCommand(validateIBANCmd())

	return cmd
}

func cardFlags(cmd *cobra.Command) {
	cmd.Flags().String("number", "", "Card number, spaces allowed")
	cmd.Flags().String("expiry", "", "Expiry date as MM/YY")
	cmd.Flags().String("cvc", "", "Security code")
	cmd.Flags().String("holder", "", "Holder name")
	cmd.Flags().String("brand", "", "Card brand code (e.g. visa, mc, amex), detected from the number when empty")
	cmd.Flags().Bool("require-cvc", true, "Security code is required")
	cmd.Flags().Bool("require-holder", false, "Holder name is required")
}

func cardInput(cmd *cobra.Command) validation.CardInput {
	flags := cmd.Flags()
	number, _ := flags.GetString("number")
	expiry, _ := flags.GetString("expiry")
	cvc, _ := flags.GetString("cvc")
	holder, _ := flags.GetString("holder")
	brand, _ := flags.GetString("brand")
	requireCVC, _ := flags.GetBool("require-cvc")
	requireHolder, _ := flags.GetBool("require-holder")

	return validation.CardInput{
		Number:               number,
		ExpiryDate:           expiry,
		SecurityCode:         cvc,
		HolderName:           holder,
		Brand:                domain.ParseCardBrand(brand),
		SecurityCodeRequired: requireCVC,
		HolderNameRequired:   requireHolder,
	}
}

func validateCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Validate card fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}

			result := validation.NewValidator().ValidateCard(cardInput(cmd))
			report := cardReport{
				Valid:        result.IsValid(),
				Brand:        result.Brand,
				Number:       result.Number.Validity,
				ExpiryDate:   result.ExpiryDate,
				SecurityCode: result.SecurityCode.Validity,
				HolderName:   result.HolderName,
			}

			if err := p.print(report, func(w io.Writer) { printCardReport(w, report) }); err != nil {
				return err
			}
			if !report.Valid {
				return errNotValid
			}
			return nil
		},
	}

	cardFlags(cmd)
	return cmd
}

func printCardReport(w io.Writer, r cardReport) {
	brand := string(r.Brand)
	if brand == "" {
		brand = "unknown"
	}

	expiry := r.ExpiryDate.Validity.String()
	if r.ExpiryDate.Month != nil && r.ExpiryDate.Year != nil {
		expiry = fmt.Sprintf("%s (%02d/%04d)", expiry, *r.ExpiryDate.Month, *r.ExpiryDate.Year)
	}

	fmt.Fprintf(w, "Brand:         %s\n", brand)
	fmt.Fprintf(w, "Number:        %s\n", r.Number)
	fmt.Fprintf(w, "Expiry date:   %s\n", expiry)
	fmt.Fprintf(w, "Security code: %s\n", r.SecurityCode)
	fmt.Fprintf(w, "Holder name:   %s\n", r.HolderName.Validity)
	fmt.Fprintf(w, "Valid:         %t\n", r.Valid)
}

func validateIBANCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "iban [value]",
		Short: "Validate an IBAN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}

			report := ibanReport{Validity: iban.Validate(args[0]).Validity}
			if parsed, ok := iban.Parse(args[0]); ok {
				report.IBAN = parsed
				report.Formatted = parsed.Formatted()
				report.Masked = parsed.Masked()
				report.SEPA = parsed.IsSEPA()
			}

			err = p.print(report, func(w io.Writer) {
				fmt.Fprintf(w, "Validity:  %s\n", report.Validity)
				if report.IBAN != nil {
					fmt.Fprintf(w, "Formatted: %s\n", report.Formatted)
					fmt.Fprintf(w, "Masked:    %s\n", report.Masked)
					fmt.Fprintf(w, "Country:   %s\n", report.IBAN.CountryCode)
					fmt.Fprintf(w, "SEPA:      %t\n", report.SEPA)
				}
			})
			if err != nil {
				return err
			}
			if !report.Validity.IsValid() {
				return errNotValid
			}
			return nil
		},
	}
}
