package export

import (
	"fmt"
	"io"
	"os"

	"github.com/de-tools/cost-planner/pkg/adapters"
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/de-tools/cost-planner/pkg/services/cost"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02 15:04"

// Reporter renders cost views as console tables.
type Reporter struct {
	writer io.Writer
	style  table.Style
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		style:  table.StyleRounded,
	}
}

// Breakdown prints one row per line item followed by the adjusted total.
func (r *Reporter) Breakdown(items []domain.LineItem, total decimal.Decimal) error {
	tw := r.newTable()
	tw.AppendHeader(table.Row{"#", "Name", "Type", "Monthly", "Usage", "Adjusted"})
	for _, item := range items {
		tw.AppendRow(table.Row{
			item.Resource.Index,
			item.Resource.Name,
			item.Resource.ResourceType,
			cost.FormatAmount(item.Resource.MonthlyCost),
			fmt.Sprintf("%d%%", item.Adjustment),
			cost.FormatAmount(item.AdjustedCost),
		})
	}
	tw.AppendFooter(table.Row{"", "Total", "", "", "", cost.FormatAmount(total)})
	tw.SetColumnConfigs(alignRight(4, 5, 6))

	return r.flush(tw)
}

func (r *Reporter) TypeGroups(groups []domain.TypeGroup) error {
	tw := r.newTable()
	tw.AppendHeader(table.Row{"Type", "Resources", "Adjusted"})
	for _, g := range groups {
		tw.AppendRow(table.Row{g.ResourceType, g.Count, cost.FormatAmount(g.Cost)})
	}
	tw.SetColumnConfigs(alignRight(2, 3))

	return r.flush(tw)
}

func (r *Reporter) Scenarios(scenarios []domain.Scenario) error {
	if len(scenarios) == 0 {
		_, err := fmt.Fprintln(r.writer, "No saved scenarios.")
		return err
	}

	tw := r.newTable()
	tw.AppendHeader(table.Row{"ID", "Name", "Saved", "Resources", "Total"})
	for _, sc := range scenarios {
		tw.AppendRow(table.Row{
			sc.ID,
			sc.Name,
			sc.Date.Format(dateLayout),
			len(sc.Resources),
			cost.FormatAmount(sc.TotalCost),
		})
	}
	tw.SetColumnConfigs(alignRight(4, 5))

	return r.flush(tw)
}

// Scenario prints the header of a saved scenario and its baked-in resources.
func (r *Reporter) Scenario(sc domain.Scenario) error {
	if _, err := fmt.Fprintf(r.writer, "%s (%s)\nSaved: %s\n", sc.Name, sc.ID, sc.Date.Format(dateLayout)); err != nil {
		return err
	}
	if sc.Description != "" {
		if _, err := fmt.Fprintln(r.writer, sc.Description); err != nil {
			return err
		}
	}

	tw := r.newTable()
	tw.AppendHeader(table.Row{"Name", "Type", "Monthly", "Usage", "Adjusted"})
	for _, res := range sc.Resources {
		tw.AppendRow(table.Row{
			res.Name,
			res.ResourceType,
			cost.FormatAmount(res.MonthlyCost),
			fmt.Sprintf("%d%%", res.Adjustment),
			cost.FormatAmount(res.AdjustedCost()),
		})
	}
	tw.AppendFooter(table.Row{"Total", "", "", "", cost.FormatAmount(sc.TotalCost)})
	tw.SetColumnConfigs(alignRight(3, 4, 5))

	return r.flush(tw)
}

func (r *Reporter) Comparison(c *domain.Comparison) error {
	s := c.Summary
	_, err := fmt.Fprintf(r.writer,
		"Baseline: %s (%s)\nProposed: %s (%s)\nDifference: %s (%s%%)\nAdded: %d  Changed: %d  Removed: %d\n",
		c.Baseline.Name, cost.FormatAmount(s.TotalBaseline),
		c.Proposed.Name, cost.FormatAmount(s.TotalProposed),
		cost.FormatAmount(s.TotalDifference), cost.FormatPercent(s.TotalPercentChange),
		s.AddedCount, s.ChangedCount, s.RemovedCount,
	)
	if err != nil {
		return err
	}

	tw := r.newTable()
	tw.AppendHeader(table.Row{"Name", "Type", "Status", "Baseline", "Proposed", "Difference", "Change %"})
	for _, res := range c.Resources {
		tw.AppendRow(table.Row{
			res.Name,
			res.ResourceType,
			string(res.Status),
			cost.FormatAmount(res.BaselineCost),
			cost.FormatAmount(res.ProposedCost),
			cost.FormatAmount(res.Difference),
			adapters.FormatNullPercent(res.PercentChange),
		})
	}
	tw.SetColumnConfigs(alignRight(4, 5, 6, 7))

	return r.flush(tw)
}

func (r *Reporter) newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(r.style)
	return tw
}

func (r *Reporter) flush(tw table.Writer) error {
	_, err := fmt.Fprintln(r.writer, tw.Render())
	return err
}

func alignRight(columns ...int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, len(columns))
	for _, n := range columns {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	return configs
}
