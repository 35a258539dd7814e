package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/jhoicas/notascan-api/pkg/logger"
)

var version = "1.0.0"

// errCheckFailed la validación terminó con errores bloqueantes (exit 1 sin mensaje extra).
var errCheckFailed = errors.New("validação falhou")

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:   "nfcheck",
		Short: "Valida CNPJs e rascunhos de NF-e/NFC-e offline",
		Long: `nfcheck aplica as mesmas regras da tela de revisão de notas fiscais
(CNPJ, data de emissão, chave de acesso, soma dos itens) sem chamar o backend.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "nível de log (debug, info, warn, error)")

	logFor := func(component string) *logger.Logger {
		return logger.NewWriter(errOut, logLevel).WithComponent(component)
	}
	root.AddCommand(newCNPJCmd(logFor), newDraftCmd(logFor))
	return root
}
