package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cognitriage/cognitriage/internal/cli"
)

func main() {
	command := NewCognitriageCtlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCognitriageCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cognitriage [flags] [options]",
		Short: "cognitriage controls the cognitive triage service.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdSubmit())
	cmd.AddCommand(cli.NewCmdGet())

	return cmd
}
