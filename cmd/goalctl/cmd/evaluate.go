package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/verification"
)

func EvaluateCmd() *cobra.Command {
	var (
		file     string
		goalType string
	)

	c := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a signal set against a goal type's policy",
		Example: `  goalctl evaluate --type schedule -f signals.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gt := model.GoalType(goalType)
			if !gt.Valid() {
				return fmt.Errorf("unknown goal type %q", goalType)
			}

			var signals model.Signals
			err := readYAML(file, cmd.InOrStdin(), &signals)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), verification.Evaluate(gt, signals))
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "-", "signals YAML file, - for stdin")
	c.Flags().StringVar(&goalType, "type", string(model.GoalTypeSchedule), "goal type: schedule, frequency or partner")
	return c
}
