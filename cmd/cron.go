package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"catalog.GO/cron"
)

var jobName string

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the cron scheduler or run a single job by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := MustContainer(cmd)
		defer c.Logger.Sync()
		out := cmd.OutOrStdout()
		if jobName != "" {
			name := strings.ToLower(jobName)
			j, ok := cron.AllJobs(c)[name]
			if !ok {
				return fmt.Errorf("unknown job: %s", jobName)
			}
			fmt.Fprintf(out, "Running cron job: %s\n", jobName)
			j.Run(args...)
			return nil
		}
		fmt.Fprintln(out, "Starting cron scheduler...")
		s, err := cron.StartCron(c)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Cron scheduler started. Press Ctrl+C to exit.")
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		<-s.Stop().Done()
		return nil
	},
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	rootCmd.AddCommand(cronStartCmd)
}
