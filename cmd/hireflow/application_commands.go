package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hireflow/internal/api"
)

func newApplicationCommand(ctx *commandContext) *cobra.Command {
	applicationCmd := &cobra.Command{
		Use:     "application",
		Aliases: []string{"app"},
		Short:   "Manage applications in the pipeline",
	}

	applicationCmd.AddCommand(newApplicationAddCommand(ctx))
	applicationCmd.AddCommand(newApplicationShowCommand(ctx))
	applicationCmd.AddCommand(newApplicationHistoryCommand(ctx))
	applicationCmd.AddCommand(newApplicationMoveCommand(ctx))
	applicationCmd.AddCommand(newApplicationSubStatusCommand(ctx))

	return applicationCmd
}

func newApplicationAddCommand(ctx *commandContext) *cobra.Command {
	var req api.CreateApplicationRequest

	cmd := &cobra.Command{
		Use:   "add <workflow-id> <candidate-id>",
		Short: "Add a candidate to a workflow's pipeline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				req.WorkflowID = args[0]
				req.CandidateID = args[1]
				app, err := svc.CreateApplication(runCtx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created application %s on stage %s\n", app.ID, app.CurrentStageID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.CandidateName, "name", "", "Candidate display name")
	cmd.Flags().StringVar(&req.CandidateEmail, "email", "", "Candidate email")
	cmd.Flags().StringVar(&req.JobID, "job", "", "Job id")
	cmd.Flags().StringVar(&req.LocationID, "location", "", "Location id")
	cmd.Flags().StringVar(&req.DepartmentID, "department", "", "Department id")
	cmd.Flags().StringVar(&req.ActorID, "actor", "", "Acting recruiter id")
	return cmd
}

func newApplicationShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <application-id>",
		Short: "Show an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				app, err := svc.Application(runCtx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, api.ApplicationResponse{Application: app})
			})
		},
	}
}

func newApplicationHistoryCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history <application-id>",
		Short: "Show an application's transition history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				payload, err := svc.History(runCtx, args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, payload)
				}
				rows := make([][]string, 0, len(payload.Transitions))
				for _, tr := range payload.Transitions {
					from := tr.FromStageID
					if from == "" {
						from = "(created)"
					}
					rows = append(rows, []string{fmt.Sprintf("%d", tr.Seq), from, tr.ToStageID, tr.ActorID, tr.Timestamp})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"#", "From", "To", "Actor", "At"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newApplicationMoveCommand(ctx *commandContext) *cobra.Command {
	var actorID string
	var expectedVersion int64

	cmd := &cobra.Command{
		Use:   "move <application-id> <stage-id>",
		Short: "Move an application to another stage of its workflow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				app, err := svc.MoveApplication(runCtx, args[0], api.MoveApplicationRequest{
					TargetStageID:   args[1],
					ActorID:         actorID,
					ExpectedVersion: expectedVersion,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Application %s now on stage %s (version %d)\n", app.ID, app.CurrentStageID, app.Version)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&actorID, "actor", "", "Acting recruiter id")
	cmd.Flags().Int64Var(&expectedVersion, "version", 0, "Version the move was decided against")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func newApplicationSubStatusCommand(ctx *commandContext) *cobra.Command {
	var expectedVersion int64

	cmd := &cobra.Command{
		Use:   "substatus <application-id> <substatus>",
		Short: "Set the scheduling signal (needs_scheduling, waiting_on_feedback, feedback_received)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(runCtx context.Context, svc *api.PipelineService) error {
				app, err := svc.SetSubStatus(runCtx, args[0], api.SubStatusRequest{
					SubStatus:       args[1],
					ExpectedVersion: expectedVersion,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Application %s substatus %q (version %d)\n", app.ID, app.SubStatus, app.Version)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&expectedVersion, "version", 0, "Version the update was decided against")
	return cmd
}
