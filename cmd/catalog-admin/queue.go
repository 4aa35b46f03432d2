package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/door43/catalog-job-handler/internal/domain/model"
	"github.com/door43/catalog-job-handler/internal/domain/webhook"
)

func newEnqueueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <payload.json|->",
		Short: "Adds a webhook payload to the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			q, err := a.openQueue(cmd.Context())
			if err != nil {
				return err
			}

			id := webhook.NewResolver(nil).Resolve(cmd.Context(), payload)
			job, err := q.Enqueue(cmd.Context(), payload, id.Describe())
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Enqueued %s on %s: %s\n", job.ID, q.Name(), job.Description)
			return nil
		},
	}
}

func newPendingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Lists jobs waiting in the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := a.openQueue(cmd.Context())
			if err != nil {
				return err
			}
			jobs, err := q.ListPending(cmd.Context())
			if err != nil {
				return err
			}
			titleColor.Fprintf(cmd.OutOrStdout(), "%d pending on %s\n", len(jobs), q.Name())
			return printJobs(cmd.OutOrStdout(), jobs)
		},
	}
}

func newFailedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "failed",
		Short: "Lists jobs that ended with an error",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := a.openQueue(cmd.Context())
			if err != nil {
				return err
			}
			jobs, err := q.ListFailed(cmd.Context())
			if err != nil {
				return err
			}
			titleColor.Fprintf(cmd.OutOrStdout(), "%d failed on %s\n", len(jobs), q.Name())
			return printJobs(cmd.OutOrStdout(), jobs)
		},
	}
}

func newRequeueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue <job-id>",
		Short: "Moves a failed job back to the end of the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.openQueue(cmd.Context())
			if err != nil {
				return err
			}
			job, err := q.Requeue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Requeued %s: %s\n", job.ID, job.Description)
			return nil
		},
	}
}

func printJobs(out io.Writer, jobs []model.QueuedJob) error {
	if len(jobs) == 0 {
		dimColor.Fprintln(out, "(none)")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tEVENT\tENQUEUED\tDESCRIPTION\tERROR")
	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			job.ID,
			job.Status,
			job.Payload.EventKind(),
			job.EnqueuedAt.Format(time.RFC3339),
			job.Description,
			job.Error,
		)
	}
	return w.Flush()
}
