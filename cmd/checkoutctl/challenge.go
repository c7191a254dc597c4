package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kevin07696/checkout-kit/internal/challenge"
)

type challengeReport struct {
	TransStatus string `json:"transStatus" yaml:"transStatus"`
	Encoded     string `json:"encoded" yaml:"encoded"`
	Key         string `json:"key" yaml:"key"`
}

func challengeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Encode or decode 3DS2 challenge results",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "encode [trans-status]",
		Short: "Encode a transaction status, e.g. Y or N",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := challenge.EncodeChallengeResult(args[0])
			if err != nil {
				return err
			}
			return printChallenge(cmd, challengeReport{TransStatus: args[0], Encoded: encoded, Key: challenge.ChallengeResultKey})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decode [result]",
		Short: "Decode an encoded challenge result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := challenge.DecodeChallengeResult(args[0])
			if err != nil {
				return err
			}
			return printChallenge(cmd, challengeReport{TransStatus: status, Encoded: args[0], Key: challenge.ChallengeResultKey})
		},
	})

	return cmd
}

func printChallenge(cmd *cobra.Command, report challengeReport) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	return p.print(report, func(w io.Writer) {
		fmt.Fprintf(w, "%s=%s (transStatus %s)\n", report.Key, report.Encoded, report.TransStatus)
	})
}
