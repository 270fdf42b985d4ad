package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipstream/internal/grpcservice"
)

func newStatusCmd() *cobra.Command {
	cmd := clientCmd(&cobra.Command{
		Use:   "status",
		Short: "Show daemon state",
		Args:  cobra.NoArgs,
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, c *grpcservice.Client, _ []string) error {
		st, err := c.Status(ctx)
		if err != nil {
			return err
		}
		if v.GetBool("json") {
			return printJSON(cmd.OutOrStdout(), st)
		}
		printStatus(cmd.OutOrStdout(), st, v.GetString("socket"))
		return nil
	})
	cmd.Flags().Bool("json", false, "output raw JSON")
	return cmd
}

func printStatus(w io.Writer, st *grpcservice.StatusResponse, socket string) {
	monitor := "stopped"
	if st.MonitorRunning {
		monitor = "running"
	}
	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Socket:\t%s\n", socket)
	fmt.Fprintf(tw, "Monitor:\t%s (%s)\n", monitor, st.Backend)
	fmt.Fprintf(tw, "Database:\t%s\n", st.Database)
	fmt.Fprintf(tw, "Entries:\t%d\n", st.Entries)
	fmt.Fprintf(tw, "Watchers:\t%d\n", st.Watchers)
	switch {
	case st.LastEvent == "":
	case st.LastEventID != 0:
		fmt.Fprintf(tw, "Last change:\t%s #%d\n", st.LastEvent, st.LastEventID)
	default:
		fmt.Fprintf(tw, "Last change:\t%s\n", st.LastEvent)
	}
	if st.Dropped > 0 {
		fmt.Fprintf(tw, "Dropped changes:\t%d\n", st.Dropped)
	}
	_ = tw.Flush()
}

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Pause or resume clipboard recording",
	}
	for _, sub := range []struct {
		use, short string
		enabled    bool
	}{
		{"start", "Resume recording clipboard changes", true},
		{"stop", "Pause recording clipboard changes", false},
	} {
		enabled := sub.enabled
		cmd.AddCommand(clientCmd(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			Args:  cobra.NoArgs,
		}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, c *grpcservice.Client, _ []string) error {
			st, err := c.SetMonitor(ctx, &grpcservice.MonitorRequest{Enabled: enabled})
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), st, v.GetString("socket"))
			return nil
		}))
	}
	return cmd
}

func newCleanupCmd() *cobra.Command {
	cmd := clientCmd(&cobra.Command{
		Use:   "cleanup",
		Short: "Apply the retention policy now",
		Long:  `Removes unpinned entries older than --retention-days, then all but the newest --max-entries unpinned entries.`,
		Args:  cobra.NoArgs,
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, c *grpcservice.Client, _ []string) error {
		resp, err := c.Cleanup(ctx, &grpcservice.CleanupRequest{
			MaxAgeDays: v.GetInt("retention-days"),
			MaxEntries: v.GetInt("max-entries"),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", resp.Removed)
		return nil
	})
	cmd.Flags().Int("retention-days", 7, "drop unpinned entries older than this (-1 = keep)")
	cmd.Flags().Int("max-entries", 500, "keep at most this many unpinned entries (-1 = unlimited)")
	return cmd
}
