package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
)

const (
	StatusKind = "status"
	ResultKind = "result"
)

var legalKinds = []string{StatusKind, ResultKind}

type GetOptions struct {
	GlobalOptions

	Output string
}

func DefaultGetOptions() *GetOptions {
	return &GetOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdGet() *cobra.Command {
	o := DefaultGetOptions()
	cmd := &cobra.Command{
		Use:   "get (status|result)/JOB_ID",
		Short: "Display the status or result of a triage job.",
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

func (o *GetOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
}

func (o *GetOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}

	if _, _, err := parseKindId(args[0]); err != nil {
		return err
	}

	if len(o.Output) > 0 && !funk.Contains(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}

	return nil
}

func (o *GetOptions) Run(ctx context.Context, args []string) error {
	kind, id, err := parseKindId(args[0])
	if err != nil {
		return err
	}

	c := o.Client()
	var response any
	switch kind {
	case StatusKind:
		response, err = c.GetStatus(ctx, id)
	case ResultKind:
		response, err = c.GetResult(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("reading %s/%s: %w", kind, id, err)
	}

	return printResource(response, o.Output)
}

func parseKindId(arg string) (string, string, error) {
	kind, id, found := strings.Cut(arg, "/")
	if !found || id == "" {
		return "", "", fmt.Errorf("expected KIND/JOB_ID, got %q", arg)
	}
	kind = strings.ToLower(kind)
	if !funk.Contains(legalKinds, kind) {
		return "", "", fmt.Errorf("kind must be one of %s", strings.Join(legalKinds, ", "))
	}
	return kind, id, nil
}
