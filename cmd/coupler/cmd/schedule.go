package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/esmlab/coupler/timegrid"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Compute the weight schedule between two component rates",
	Run: func(cmd *cobra.Command, _ []string) {
		from, _ := cmd.Flags().GetInt("from")
		to, _ := cmd.Flags().GetInt("to")
		runLength, _ := cmd.Flags().GetInt("run-length")

		s, err := timegrid.NewSchedule(
			timegrid.Rate(from), timegrid.Rate(to), runLength)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		fmt.Printf("history: %d, rows over the run: %d, repeating every %d\n",
			s.History(), s.Len(), s.Period())

		for m := 0; m < s.Period(); m++ {
			fmt.Printf("%4d: %v\n", m, s.Row(m))
		}
	},
}

func init() {
	scheduleCmd.Flags().Int("from", 1, "producer rate in fine clock ticks")
	scheduleCmd.Flags().Int("to", 1, "consumer rate in fine clock ticks")
	scheduleCmd.Flags().Int("run-length", 0,
		"total fine clock ticks in the run")

	rootCmd.AddCommand(scheduleCmd)
}
