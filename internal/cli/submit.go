package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"

	api "github.com/cognitriage/cognitriage/api/v1alpha1"
)

type SubmitOptions struct {
	GlobalOptions

	Output       string
	Wait         bool
	PollInterval time.Duration
}

func DefaultSubmitOptions() *SubmitOptions {
	return &SubmitOptions{
		GlobalOptions: DefaultGlobalOptions(),
		PollInterval:  500 * time.Millisecond,
	}
}

func NewCmdSubmit() *cobra.Command {
	o := DefaultSubmitOptions()
	cmd := &cobra.Command{
		Use:   "submit INTAKE_FILE",
		Short: "Submit an intake bundle for triage.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *SubmitOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
	fs.BoolVarP(&o.Wait, "wait", "w", o.Wait, "Poll until the job reaches a terminal state and print the result.")
	fs.DurationVar(&o.PollInterval, "poll-interval", o.PollInterval, "Interval between status polls when waiting.")
}

func (o *SubmitOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(o.Output) > 0 && !funk.Contains(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

func (o *SubmitOptions) Run(ctx context.Context, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading intake file: %w", err)
	}

	var intake api.IntakeRequest
	if err := json.Unmarshal(data, &intake); err != nil {
		return fmt.Errorf("parsing intake file: %w", err)
	}

	c := o.Client()
	reply, err := c.SubmitTriage(ctx, intake)
	if err != nil {
		return fmt.Errorf("submitting intake: %w", err)
	}

	if !o.Wait {
		return printResource(reply, o.Output)
	}

	fmt.Fprintf(os.Stderr, "job %s submitted, waiting...\n", reply.JobID)
	for {
		status, err := c.GetStatus(ctx, reply.JobID)
		if err != nil {
			return fmt.Errorf("polling job %s: %w", reply.JobID, err)
		}
		if status.Status == "completed" || status.Status == "failed" {
			result, err := c.GetResult(ctx, reply.JobID)
			if err != nil {
				return fmt.Errorf("fetching result for job %s: %w", reply.JobID, err)
			}
			return printResource(result, o.Output)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.PollInterval):
		}
	}
}
