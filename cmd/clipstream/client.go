package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipstream/internal/grpcservice"
	"go.klb.dev/clipstream/internal/ipc"
)

// dialDaemon returns a client connected to the daemon's local socket.
// No auth needed; the socket is local and owner-restricted by the OS.
func dialDaemon(socket string) (*grpc.ClientConn, *grpcservice.Client, error) {
	if !ipc.IsRunning(socket) {
		return nil, nil, fmt.Errorf("no clipstream daemon listening on %s (start one with \"clipstream daemon\")", socket)
	}
	conn, err := grpc.NewClient("passthrough:///clipstream",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return ipc.Dial(ctx, socket)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	return conn, grpcservice.NewClient(conn), nil
}

// clientCmd builds a sub-command that talks to the daemon. run receives a
// connected client; the connection is closed afterwards.
func clientCmd(cmd *cobra.Command, run func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, c *grpcservice.Client, args []string) error) *cobra.Command {
	v := viper.New()
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) }
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		conn, client, err := dialDaemon(v.GetString("socket"))
		if err != nil {
			return err
		}
		defer conn.Close()
		return explain(run(cmd.Context(), cmd, v, client, args))
	}
	addSocketFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

// explain turns gRPC status errors into plain messages.
func explain(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound, codes.InvalidArgument, codes.AlreadyExists:
		return fmt.Errorf("%s", st.Message())
	case codes.Unavailable:
		return fmt.Errorf("daemon unavailable: %s", st.Message())
	default:
		return fmt.Errorf("%s: %s", strings.ToLower(st.Code().String()), st.Message())
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// oneLine flattens s for table output and shortens it to n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}
