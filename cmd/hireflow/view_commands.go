package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hireflow/internal/api"
	"hireflow/internal/views"
)

// viewFlags are the filter/sort knobs shared by board, list, and table.
type viewFlags struct {
	text        string
	phases      []string
	jobs        []string
	locations   []string
	departments []string
	sortField   string
	sortDir     string
	page        int
	stage       string
	jsonOut     bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.text, "query", "q", "", "Free-text match on candidate name or email")
	cmd.Flags().StringSliceVar(&f.phases, "phase", nil, "Phase buckets ("+phaseList()+")")
	cmd.Flags().StringSliceVar(&f.jobs, "job", nil, "Job ids")
	cmd.Flags().StringSliceVar(&f.locations, "location", nil, "Location ids")
	cmd.Flags().StringSliceVar(&f.departments, "department", nil, "Department ids")
	cmd.Flags().StringVar(&f.sortField, "sort", "", "Sort field (updatedAt, name, enteredStageAt)")
	cmd.Flags().StringVar(&f.sortDir, "dir", "", "Sort direction (asc, desc)")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Emit JSON instead of rendered output")
}

func (f *viewFlags) query() (views.Query, error) {
	values := url.Values{}
	if f.text != "" {
		values.Set("q", f.text)
	}
	values["phase"] = f.phases
	values["job"] = f.jobs
	values["location"] = f.locations
	values["department"] = f.departments
	if f.sortField != "" {
		values.Set("sort", f.sortField)
	}
	if f.sortDir != "" {
		values.Set("dir", f.sortDir)
	}
	if f.page > 0 {
		values.Set("page", strconv.Itoa(f.page))
	}
	if f.stage != "" {
		values.Set("stage", f.stage)
	}
	return api.ViewQueryFromValues(values)
}

func newBoardCommand(ctx *commandContext) *cobra.Command {
	flags := &viewFlags{}

	cmd := &cobra.Command{
		Use:   "board <workflow-id>",
		Short: "Render the Kanban board for a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := flags.query()
			if err != nil {
				return err
			}
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				board, err := svc.Board(runCtx, args[0], query)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return writeJSON(cmd, board)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, column := range board.Columns {
					fmt.Fprintf(out, "%s (%d)\n", column.Stage.Name, len(column.Cards))
					for _, card := range column.Cards {
						line := fmt.Sprintf("  %s  %s", card.Application.ID, cardLabel(card))
						if card.Breached {
							line += fmt.Sprintf("  overdue %dd", card.DaysInStage)
							if colorize {
								line = ansiRed + line + ansiReset
							}
						}
						fmt.Fprintln(out, line)
					}
				}
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	flags := &viewFlags{}

	cmd := &cobra.Command{
		Use:   "list <workflow-id>",
		Short: "Render the paginated application list for a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := flags.query()
			if err != nil {
				return err
			}
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				page, err := svc.List(runCtx, args[0], query)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return writeJSON(cmd, page)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Candidate", "Stage", "Phase", "Days", "Status"},
					viewItemRows(page.Items),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				fmt.Fprintf(out, "Page %d of %d (%d applications)\n", page.Page, page.TotalPages, page.Total)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&flags.page, "page", 1, "Page number")
	return cmd
}

func newTableCommand(ctx *commandContext) *cobra.Command {
	flags := &viewFlags{}

	cmd := &cobra.Command{
		Use:   "table <workflow-id>",
		Short: "Render the pipeline table, optionally restricted to one stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := flags.query()
			if err != nil {
				return err
			}
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				payload, err := svc.Table(runCtx, args[0], query)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return writeJSON(cmd, payload)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Candidate", "Stage", "Phase", "Days", "Status"},
					viewItemRows(payload.Rows),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.stage, "stage", "all", "Stage id to restrict to, or all")
	return cmd
}

func phaseList() string {
	phases := views.AllPhases()
	names := make([]string, 0, len(phases))
	for _, phase := range phases {
		names = append(names, string(phase))
	}
	return strings.Join(names, ", ")
}

func cardLabel(item api.ViewItem) string {
	label := item.Application.CandidateName
	if label == "" {
		label = item.Application.CandidateID
	}
	if item.Application.SubStatus != "" {
		label += " [" + item.Application.SubStatus + "]"
	}
	return label
}

func viewItemRows(items []api.ViewItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		status := item.Application.SubStatus
		if item.Breached {
			if status != "" {
				status += ", "
			}
			status += "overdue"
		}
		candidate := item.Application.CandidateName
		if candidate == "" {
			candidate = item.Application.CandidateID
		}
		rows = append(rows, []string{
			item.Application.ID,
			candidate,
			item.StageName,
			item.Phase,
			strconv.Itoa(item.DaysInStage),
			status,
		})
	}
	return rows
}
