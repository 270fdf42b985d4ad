package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipstream/internal/grpcservice"
	"go.klb.dev/clipstream/internal/hub"
)

func newWatchCmd() *cobra.Command {
	cmd := clientCmd(&cobra.Command{
		Use:   "watch",
		Short: "Stream history changes as they happen",
		Long: `Prints one line per history change until interrupted. --json prints one
JSON object per line.`,
		Args: cobra.NoArgs,
	}, runWatch)
	cmd.Flags().StringSlice("kinds", nil, "only these event kinds: added,refreshed,updated,pinned,unpinned,deleted,cleanup")
	cmd.Flags().Bool("json", false, "output JSON lines")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, v *viper.Viper, c *grpcservice.Client, _ []string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stream, err := c.Watch(ctx, &grpcservice.WatchRequest{Kinds: v.GetStringSlice("kinds")})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	for {
		ev, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if v.GetBool("json") {
			if err := enc.Encode(ev); err != nil {
				return err
			}
			continue
		}
		printEvent(out, ev)
	}
}

func printEvent(w io.Writer, ev *grpcservice.WatchEvent) {
	switch {
	case ev.Kind == hub.KindCleanup:
		fmt.Fprintf(w, "%-9s %d entries removed\n", ev.Kind, ev.Removed)
	case ev.Entry == nil:
		fmt.Fprintf(w, "%-9s #%d\n", ev.Kind, ev.ID)
	default:
		source := ""
		if ev.Entry.SourceApp != nil {
			source = " (" + *ev.Entry.SourceApp + ")"
		}
		fmt.Fprintf(w, "%-9s #%d %s%s %s\n", ev.Kind, ev.ID, ev.Entry.ContentType, source, oneLine(ev.Entry.Content, 60))
	}
}
