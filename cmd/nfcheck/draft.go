package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/notascan-api/internal/application/dto"
	"github.com/jhoicas/notascan-api/internal/application/review"
	"github.com/jhoicas/notascan-api/internal/clock"
	"github.com/jhoicas/notascan-api/internal/domain/entity"
	"github.com/jhoicas/notascan-api/pkg/logger"
	"github.com/jhoicas/notascan-api/pkg/nfe"
)

type draftOptions struct {
	useItemsSum bool
	payload     bool
	today       string
	timezone    string
}

func newDraftCmd(logFor func(string) *logger.Logger) *cobra.Command {
	var opts draftOptions
	cmd := &cobra.Command{
		Use:   "draft <arquivo>",
		Short: "Valida um rascunho de nota (YAML ou JSON)",
		Long: `Carrega um rascunho com os campos issuer_name, issuer_cnpj, number, series,
issue_date, access_key, total_value e items, aplica as regras de validação e
mostra erros e avisos. Sai com status 1 se houver erro bloqueante.`,
		Example: `  nfcheck draft nota.yaml
  nfcheck draft nota.json --use-items-sum --payload`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraft(cmd.OutOrStdout(), logFor("draft"), args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.useItemsSum, "use-items-sum", false, "usar a soma dos itens como valor total")
	cmd.Flags().BoolVar(&opts.payload, "payload", false, "imprimir o payload JSON normalizado")
	cmd.Flags().StringVar(&opts.today, "today", "", "data de referência YYYY-MM-DD (padrão: hoje)")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "America/Sao_Paulo", "fuso horário da regra de data futura")
	return cmd
}

func loadDraftFile(path string) (dto.InvoiceDataDTO, error) {
	var in dto.InvoiceDataDTO
	raw, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("ler rascunho: %w", err)
	}
	// YAML é superconjunto de JSON: o mesmo decoder serve para os dois formatos.
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("decodificar %s: %w", path, err)
	}
	return in, nil
}

func runDraft(out io.Writer, log *logger.Logger, path string, opts draftOptions) error {
	in, err := loadDraftFile(path)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("fuso horário %q: %w", opts.timezone, err)
	}
	var clk clock.Clock = clock.System{}
	if opts.today != "" {
		t, err := time.ParseInLocation("2006-01-02", opts.today, loc)
		if err != nil {
			return fmt.Errorf("--today: %w", err)
		}
		clk = clock.Fixed{T: t.Add(12 * time.Hour)}
	}

	s := review.NewSession("offline", review.Source{Kind: review.SourceOffline, ID: path}, review.Deps{
		Clock:    clk,
		Location: loc,
		Logger:   log.Zerolog(),
	})
	d, err := review.DraftFromDTO(in, loc)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	s.Load(d)
	if opts.useItemsSum {
		if err := s.UseItemsSumAsTotal(); err != nil {
			return err
		}
	}
	ok := s.Check()
	printReport(out, s.Snapshot(), s.Draft(), ok)

	if opts.payload {
		raw, err := json.MarshalIndent(review.BuildPayload(s.Draft()), "", "  ")
		if err != nil {
			return fmt.Errorf("serializar payload: %w", err)
		}
		fmt.Fprintln(out, string(raw))
	}
	log.Debug().Bool("ok", ok).Str("file", path).Msg("rascunho verificado")
	if !ok {
		return errCheckFailed
	}
	return nil
}

func printReport(out io.Writer, v dto.ReviewSessionDTO, draft entity.InvoiceDraft, ok bool) {
	d := v.Draft
	issueDate := d.IssueDate
	if issueDate == "" {
		issueDate = "sem data"
	}
	fmt.Fprintf(out, "Emitente:   %s (%s)\n", orDash(d.IssuerName), orDash(d.IssuerCNPJ))
	fmt.Fprintf(out, "Nota:       %s série %s, %s\n", orDash(d.Number), orDash(d.Series), issueDate)
	if key := nfe.FormatAccessKey(d.AccessKey); key != "" {
		fmt.Fprintf(out, "Chave:      %s\n", key)
	}
	fmt.Fprintf(out, "Itens:      %d, soma %s, total %s\n", len(d.Items), nfe.FormatBRL(d.ItemsSum), nfe.FormatBRL(d.TotalValue))
	for i, it := range draft.Items {
		fmt.Fprintf(out, "  %2d. %-30s %s %s x %s = %s\n", i+1, orDash(it.DisplayDescription()),
			it.Quantity.String(), it.Unit, nfe.FormatBRL(it.UnitPrice), nfe.FormatBRL(it.LineTotal))
	}

	var errs []string
	for _, e := range []string{v.Errors.TaxID, v.Errors.Date, v.Errors.General} {
		if e != "" {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		fmt.Fprintln(out, "Erros:")
		for _, e := range errs {
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}

	a := v.Advisories
	var warns []string
	if a.TotalMismatch {
		warns = append(warns, a.MismatchMessage)
	}
	if a.AccessKeyHint != "" {
		warns = append(warns, "Chave de acesso: "+a.AccessKeyHint)
	}
	if len(a.EmptyFields) > 0 {
		warns = append(warns, "Campos vazios: "+strings.Join(a.EmptyFields, ", "))
	}
	if len(warns) > 0 {
		fmt.Fprintln(out, "Avisos:")
		for _, w := range warns {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	if ok {
		fmt.Fprintln(out, "Resultado:  pronto para envio")
	} else {
		fmt.Fprintln(out, "Resultado:  bloqueado")
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
