package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/okian/avaliece/internal/domain/filter"
	"github.com/okian/avaliece/internal/domain/view"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var sel filter.Selection
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print per-assessment skill averages for a filter selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			cfg.Dataset.Watch = false
			svc, err := newService(cfg, log)
			if err != nil {
				return err
			}
			m := svc.BuildView(cmd.Context(), sel)
			return writeReport(cmd.OutOrStdout(), m)
		},
	}
	f := cmd.Flags()
	f.StringVar(&sel.Region, "crede", "", "Region (NM_ENTIDADE)")
	f.StringVar(&sel.Network, "rede", "", "Network (VL_FILTRO_REDE)")
	f.StringVar(&sel.Stage, "etapa", "", "Stage (VL_FILTRO_ETAPA)")
	f.StringVar(&sel.Subject, "disciplina", "", "Subject (VL_FILTRO_DISCIPLINA)")
	f.StringVar(&sel.Search, "q", "", "Keyword over skill code and description")
	return cmd
}

// writeReport renders the view model as text: banner lines and one table
// per assessment. A load failure is returned as an error after printing it.
func writeReport(w io.Writer, m view.Model) error {
	fmt.Fprintln(w, m.Title)
	for _, d := range m.Dropdowns {
		fmt.Fprintf(w, "%s: %s\n", d.Label, d.Selected)
	}
	if m.Selection.Search != "" {
		fmt.Fprintf(w, "q: %s\n", m.Selection.Search)
	}
	fmt.Fprintln(w)

	switch m.Outcome {
	case view.OutcomeNotFound, view.OutcomeError:
		fmt.Fprintln(w, m.Error)
		return fmt.Errorf("report: %s", m.Outcome)
	case view.OutcomeEmpty:
		fmt.Fprintln(w, m.Warning)
		return nil
	}

	fmt.Fprintln(w, m.Success)
	for _, s := range m.Sections {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Heading)

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Habilidade", "Descrição", "Taxa de Acerto (%)", "Registros"})
		table.SetAutoWrapText(false)
		for _, g := range s.Groups {
			table.Append([]string{
				g.Code,
				g.Description,
				strconv.FormatFloat(g.Mean, 'f', 2, 64),
				strconv.Itoa(g.Count),
			})
		}
		table.Render()
	}
	return nil
}
