package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hireflow/internal/api"
	"hireflow/internal/pipeline"
)

func newWorkflowCommand(ctx *commandContext) *cobra.Command {
	workflowCmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage workflows and their stages",
	}

	workflowCmd.AddCommand(newWorkflowListCommand(ctx))
	workflowCmd.AddCommand(newWorkflowCreateCommand(ctx))
	workflowCmd.AddCommand(newWorkflowDeleteCommand(ctx))
	workflowCmd.AddCommand(newWorkflowStagesCommand(ctx))
	workflowCmd.AddCommand(newWorkflowAddStageCommand(ctx))
	workflowCmd.AddCommand(newWorkflowReorderCommand(ctx))
	workflowCmd.AddCommand(newWorkflowRemoveStageCommand(ctx))

	return workflowCmd
}

func newWorkflowListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				payload, err := svc.Workflows(runCtx)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, payload)
				}
				rows := make([][]string, 0, len(payload.Workflows))
				for _, wf := range payload.Workflows {
					rows = append(rows, []string{wf.ID, wf.Name, wf.CreatedAt})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newWorkflowCreateCommand(ctx *commandContext) *cobra.Command {
	var seed bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workflow, optionally seeded with the standard stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				wf, err := svc.CreateWorkflow(runCtx, api.CreateWorkflowRequest{Name: args[0], Seed: seed})
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, wf)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created workflow %s (%s) with %d stages\n", wf.Name, wf.ID, len(wf.Stages))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Seed the standard hiring stages")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a summary")
	return cmd
}

func newWorkflowDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <workflow-id>",
		Short: "Delete a workflow without applications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				if err := svc.DeleteWorkflow(runCtx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted workflow %s\n", args[0])
				return nil
			})
		},
	}
}

func newWorkflowStagesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stages <workflow-id>",
		Short: "Show a workflow's stages in pipeline order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				payload, err := svc.Stages(runCtx, args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, payload)
				}
				rows := make([][]string, 0, len(payload.Stages))
				for _, stage := range payload.Stages {
					due := "-"
					if stage.DueDays > 0 {
						due = strconv.Itoa(stage.DueDays)
					}
					occupancy := strconv.Itoa(payload.ApplicationCounts[stage.ID])
					rows = append(rows, []string{strconv.Itoa(stage.Order), stage.ID, stage.Name, stage.Type, due, occupancy})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"#", "ID", "Name", "Type", "Due days", "In stage"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newWorkflowAddStageCommand(ctx *commandContext) *cobra.Command {
	var stageType string
	var dueDays int

	cmd := &cobra.Command{
		Use:   "add-stage <workflow-id> <name>",
		Short: "Append a stage to a workflow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				// Unset flag falls back to the configured default SLA;
				// terminal stages never get one.
				if !cmd.Flags().Changed("due-days") {
					if parsed, ok := pipeline.ParseStageType(stageType); ok && !parsed.IsTerminal() && parsed != pipeline.StageTypeNone {
						cfg, err := ctx.ensureConfig()
						if err != nil {
							return err
						}
						dueDays = cfg.Pipeline.DefaultDueDays
					}
				}
				stage, err := svc.AddStage(runCtx, args[0], api.AddStageRequest{
					Name:    args[1],
					Type:    stageType,
					DueDays: dueDays,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added stage %s (%s) at position %d\n", stage.Name, stage.ID, stage.Order)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&stageType, "type", "none", "Stage type ("+stageTypeList()+")")
	cmd.Flags().IntVar(&dueDays, "due-days", 0, "SLA in days; 0 disables the deadline (unset: config default for non-terminal types)")
	return cmd
}

func newWorkflowReorderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <workflow-id> <stage-id>...",
		Short: "Reorder stages; the ids must list every stage exactly once",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				payload, err := svc.ReorderStages(runCtx, args[0], api.ReorderStagesRequest{StageIDs: args[1:]})
				if err != nil {
					return err
				}
				names := make([]string, 0, len(payload.Stages))
				for _, stage := range payload.Stages {
					names = append(names, stage.Name)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "New order: %s\n", strings.Join(names, " > "))
				return nil
			})
		},
	}
}

func newWorkflowRemoveStageCommand(ctx *commandContext) *cobra.Command {
	var migrateTo string

	cmd := &cobra.Command{
		Use:   "remove-stage <workflow-id> <stage-id>",
		Short: "Remove a stage, migrating its applications when --migrate-to is set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				err := svc.RemoveStage(runCtx, args[0], args[1], api.RemoveStageRequest{MigrateTo: migrateTo})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed stage %s\n", args[1])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&migrateTo, "migrate-to", "", "Stage id that applications on the removed stage move to")
	return cmd
}

func stageTypeList() string {
	types := pipeline.AllStageTypes()
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
