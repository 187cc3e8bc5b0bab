package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/cost-planner/pkg/adapters"
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/de-tools/cost-planner/pkg/runtime/terminal/export"
	"github.com/de-tools/cost-planner/pkg/services/cost"
	"github.com/de-tools/cost-planner/pkg/services/session"
	"github.com/de-tools/cost-planner/pkg/services/wizard"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type EstimateCmd struct {
	file        string
	usagePath   string
	templateID  string
	suggest     bool
	interactive bool
	byType      bool
	saveName    string
	description string
	env         Env
	reporter    *export.Reporter
}

func NewEstimateCmd(env Env, reporter *export.Reporter) *cobra.Command {
	ec := &EstimateCmd{env: env, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the monthly cost of an infrastructure project",
		RunE:  ec.run,
	}

	cmd.Flags().StringVarP(&ec.file, "file", "f", "", "Project file to upload to the estimator")
	cmd.Flags().StringVar(&ec.usagePath, "usage", "", "JSON file with usage per resource name")
	cmd.Flags().StringVar(&ec.templateID, "template", "", "Usage template to apply")
	cmd.Flags().BoolVar(&ec.suggest, "suggest", false, "Ask the estimator for a starting usage per resource")
	cmd.Flags().BoolVar(&ec.interactive, "wizard", false, "Answer the estimator's clarifying questions to derive usage")
	cmd.Flags().BoolVar(&ec.byType, "by-type", false, "Also print costs grouped by resource type")
	cmd.Flags().StringVar(&ec.saveName, "save", "", "Save the estimate as a scenario with this name")
	cmd.Flags().StringVar(&ec.description, "description", "", "Description of the saved scenario")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (ec *EstimateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	client, err := ec.env.Estimator()
	if err != nil {
		return err
	}
	normalizer, err := ec.env.Normalizer()
	if err != nil {
		return err
	}

	f, err := os.Open(ec.file)
	if err != nil {
		return fmt.Errorf("failed to open project file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close project file")
		}
	}()

	project, err := client.Upload(ctx, filepath.Base(ec.file), f)
	if err != nil {
		return fmt.Errorf("failed to upload project: %w", err)
	}

	store := session.NewStore(normalizer)
	var suggester session.Suggester
	if ec.suggest {
		suggester = client
	}
	snapshot := store.Ingest(ctx, project, suggester)

	if ec.templateID != "" {
		answer, err := client.ApplyTemplate(ctx, ec.templateID, snapshot.Resources)
		if err != nil {
			return fmt.Errorf("failed to apply template %s: %w", ec.templateID, err)
		}
		store.ApplyUsage(answer)
	}

	if ec.usagePath != "" {
		data, err := os.ReadFile(ec.usagePath)
		if err != nil {
			return fmt.Errorf("failed to read usage file: %w", err)
		}
		var raw map[string]map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse usage file: %w", err)
		}
		store.ApplyUsage(adapters.MapAPIUsageToDomain(raw))
	}

	if ec.interactive {
		answer, err := ec.runWizard(cmd, client, snapshot.Resources)
		if err != nil {
			return err
		}
		store.ApplyUsage(answer)
	}

	items := store.LineItems()
	if err := ec.reporter.Breakdown(items, store.Total()); err != nil {
		return err
	}
	if ec.byType {
		if err := ec.reporter.TypeGroups(cost.GroupByType(items)); err != nil {
			return err
		}
	}

	if ec.saveName == "" {
		return nil
	}

	scenarios, err := ec.env.Scenarios(ctx)
	if err != nil {
		return err
	}
	snapshot = store.Snapshot()
	id, err := scenarios.Save(ctx, ec.saveName, ec.description, snapshot.Resources, snapshot.Adjustments)
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved scenario %s\n", id)
	return err
}

// runWizard asks each clarifying question on the command's input. An empty
// line skips the question, "back" returns to the previous one and end of
// input skips everything left.
func (ec *EstimateCmd) runWizard(
	cmd *cobra.Command,
	generator wizard.Generator,
	resources []domain.Resource,
) (domain.UsageAnswer, error) {
	ctx := cmd.Context()
	w, err := wizard.New(generator)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx, resources); err != nil {
		return nil, fmt.Errorf("failed to start usage wizard: %w", err)
	}

	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())
	total := len(w.Questions())

	for !w.Done() {
		q, ok := w.Current()
		if !ok {
			break
		}
		if _, err := fmt.Fprintf(out, "[%d/%d] %s: %s\n> ", w.Step()+1, total, q.ResourceName, q.Question); err != nil {
			return nil, err
		}

		if !in.Scan() {
			for w.Skip() {
			}
			break
		}
		switch answer := strings.TrimSpace(in.Text()); answer {
		case "":
			w.Skip()
		case "back":
			w.Previous()
		default:
			w.Answer(answer)
			w.Next()
		}
	}
	if err := in.Err(); err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}

	answer, err := w.Complete(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate usage: %w", err)
	}
	return answer, nil
}
