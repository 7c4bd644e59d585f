package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/SNU-Hackathon/Doany-sub000/internal/frequency"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/schedule"
)

type weeklyFile struct {
	Timezone      string         `yaml:"timezone"`
	Period        model.Period   `yaml:"period"`
	TargetPerWeek int            `yaml:"targetPerWeek"`
	PassRatio     float64        `yaml:"passRatio"`
	Records       []weeklyRecord `yaml:"records"`
}

type weeklyRecord struct {
	At          time.Time `yaml:"at"`
	FinalPass   bool      `yaml:"finalPass"`
	IsDuplicate bool      `yaml:"isDuplicate"`
}

func WeeklyCmd() *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:   "weekly",
		Short: "Score a frequency goal's records week by week",
		Example: `  goalctl weekly -f records.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in weeklyFile
			err := readYAML(file, cmd.InOrStdin(), &in)
			if err != nil {
				return err
			}

			loc, err := schedule.LoadLocation(in.Timezone)
			if err != nil {
				return err
			}

			records := make([]*model.VerificationRecord, 0, len(in.Records))
			for _, r := range in.Records {
				records = append(records, &model.VerificationRecord{
					CreatedAt:   r.At,
					FinalPass:   r.FinalPass,
					IsDuplicate: r.IsDuplicate,
				})
			}

			var threshold frequency.Threshold
			if in.PassRatio > 0 && in.PassRatio < 1 {
				threshold = frequency.MinRatio(in.PassRatio)
			}

			result, err := frequency.Aggregate(frequency.Input{
				TargetPerWeek: in.TargetPerWeek,
				PeriodStart:   in.Period.Start,
				PeriodEnd:     in.Period.End,
				Location:      loc,
				Records:       records,
				Threshold:     threshold,
			})
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "-", "records YAML file, - for stdin")
	return c
}
