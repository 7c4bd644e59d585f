package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/schedule"
	"github.com/SNU-Hackathon/Doany-sub000/internal/validation"
)

func OccurrencesCmd() *cobra.Command {
	var (
		file     string
		goalType string
		asJSON   bool
	)

	c := &cobra.Command{
		Use:   "occurrences",
		Short: "Expand a schedule file into concrete sessions",
		Example: `  goalctl occurrences -f schedule.yaml
  cat schedule.yaml | goalctl occurrences -f - --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var gs model.GoalSchedule
			err := readYAML(file, cmd.InOrStdin(), &gs)
			if err != nil {
				return err
			}

			occurrences, err := validation.ValidateSchedule(model.GoalType(goalType), gs)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), occurrences)
			}
			return printOccurrences(cmd.OutOrStdout(), gs.Timezone, occurrences)
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "-", "schedule YAML file, - for stdin")
	c.Flags().StringVar(&goalType, "type", string(model.GoalTypeSchedule), "goal type")
	c.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return c
}

func printOccurrences(w io.Writer, timezone string, occurrences []model.Occurrence) error {
	loc, err := schedule.LoadLocation(timezone)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDAY\tLOCAL START\tLOCAL END\tUTC START")
	for i, o := range occurrences {
		start := o.Start.In(loc)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			start.Weekday().String()[:3],
			start.Format("2006-01-02 15:04"),
			o.End.In(loc).Format("15:04"),
			o.Start.UTC().Format(time.RFC3339),
		)
	}
	fmt.Fprintf(tw, "\n%d occurrences\n", len(occurrences))
	return tw.Flush()
}
