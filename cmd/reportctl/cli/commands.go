package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-reports/internal/reports"
	"github.com/odyssey-erp/odyssey-reports/jobs"
)

// Opener returns the queue helpers once flags are parsed.
type Opener func() (*QueueCLI, error)

// NewRootCmd builds the reportctl command tree.
func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Operate the report print queue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPrintCmd(open), newQueueCmd(open), newScheduledCmd(open))
	return root
}

type printCmd struct {
	open      Opener
	kind      string
	profileID int64
	copies    int
	keyword   string
	ids       []int64
	from      string
	to        string
	requester string
}

func newPrintCmd(open Opener) *cobra.Command {
	pc := &printCmd{open: open}
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Enqueue a batch print of a listing",
		RunE:  pc.run,
	}
	cmd.Flags().StringVar(&pc.kind, "kind", "", "Report kind (e.g. customers)")
	cmd.Flags().Int64Var(&pc.profileID, "profile", 0, "Print profile id")
	cmd.Flags().IntVar(&pc.copies, "copies", 1, "Copies per document")
	cmd.Flags().StringVar(&pc.keyword, "q", "", "Keyword filter")
	cmd.Flags().Int64SliceVar(&pc.ids, "ids", nil, "Record ids")
	cmd.Flags().StringVar(&pc.from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&pc.to, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&pc.requester, "requested-by", "reportctl", "Requester recorded in the job log")

	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func parseDateFlag(name, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("--%s must be YYYY-MM-DD", name)
	}
	return &t, nil
}

func (pc *printCmd) run(cmd *cobra.Command, _ []string) error {
	criteria := reports.Criteria{Keyword: strings.TrimSpace(pc.keyword), IDs: pc.ids}
	var err error
	if criteria.From, err = parseDateFlag("from", pc.from); err != nil {
		return err
	}
	if criteria.To, err = parseDateFlag("to", pc.to); err != nil {
		return err
	}

	q, err := pc.open()
	if err != nil {
		return err
	}
	defer q.Close()

	info, err := q.TriggerBatchPrint(cmd.Context(), jobs.BatchPrintPayload{
		Kind:        pc.kind,
		Criteria:    criteria,
		ProfileID:   pc.profileID,
		Copies:      pc.copies,
		RequestedBy: pc.requester,
	})
	if err != nil {
		return fmt.Errorf("enqueue batch print: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s on queue %s\n", info.ID, info.Queue)
	return nil
}

func newQueueCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show print queue counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := open()
			if err != nil {
				return err
			}
			defer q.Close()
			stats, err := q.InspectQueue()
			if err != nil {
				return fmt.Errorf("inspect queue: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "QUEUE\tPENDING\tACTIVE\tSCHEDULED\tRETRY\tARCHIVED")
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
			return tw.Flush()
		},
	}
}

func newScheduledCmd(open Opener) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "scheduled",
		Short: "List scheduled print tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := open()
			if err != nil {
				return err
			}
			defer q.Close()
			tasks, err := q.ListScheduled(size)
			if err != nil {
				return fmt.Errorf("list scheduled: %w", err)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no scheduled print tasks")
				return nil
			}
			for _, t := range tasks {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.ID, t.Type, t.NextProcessAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 10, "Maximum tasks to list")
	return cmd
}
