package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/notascan-api/pkg/logger"
	"github.com/jhoicas/notascan-api/pkg/nfe"
)

func newCNPJCmd(logFor func(string) *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "cnpj <valor>...",
		Short: "Formata e valida um ou mais CNPJs",
		Example: `  nfcheck cnpj 11222333000181
  nfcheck cnpj 11.222.333/0001-81 12345`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logFor("cnpj")
			failed := 0
			for _, raw := range args {
				msg := nfe.CNPJSubmitErrorMessage(raw)
				status := "válido"
				switch {
				case nfe.CNPJDigits(raw) == "":
					status = "vazio"
				case msg != "":
					status = msg
					failed++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s  %s\n", nfe.FormatCNPJ(raw), status)
			}
			log.Debug().Int("total", len(args)).Int("invalid", failed).Msg("cnpj verificados")
			if failed > 0 {
				return errCheckFailed
			}
			return nil
		},
	}
}
