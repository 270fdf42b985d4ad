package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipstream/internal/grpcservice"
	"go.klb.dev/clipstream/internal/history"
)

func newSearchCmd() *cobra.Command {
	cmd := clientCmd(&cobra.Command{
		Use:   "search [query...]",
		Short: "List history entries, optionally filtered by a full-text query",
		Long: `Lists history entries, pinned entries first. Without a query the most
recent entries are shown; otherwise every word is matched as a prefix against
entry content and source application.`,
	}, runSearch)
	cmd.Flags().Int("limit", history.DefaultSearchLimit, "maximum number of entries")
	cmd.Flags().Bool("json", false, "output raw JSON")
	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, v *viper.Viper, c *grpcservice.Client, args []string) error {
	resp, err := c.Search(ctx, &grpcservice.SearchRequest{
		Query: strings.Join(args, " "),
		Limit: v.GetInt("limit"),
	})
	if err != nil {
		return err
	}
	if v.GetBool("json") {
		return printJSON(cmd.OutOrStdout(), resp.Entries)
	}
	printEntries(cmd.OutOrStdout(), resp.Entries)
	return nil
}

func printEntries(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries.")
		return
	}
	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ID\tPIN\tTYPE\tSOURCE\tCOPIED\tCONTENT\n")
	for _, e := range entries {
		pin := ""
		if e.IsPinned {
			pin = "*"
		}
		source := "-"
		if e.SourceApp != nil {
			source = *e.SourceApp
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, pin, e.ContentType, source, fmtAge(e.CreatedAt), oneLine(e.Content, 60))
	}
	_ = tw.Flush()
}

func newShowCmd() *cobra.Command {
	cmd := clientCmd(&cobra.Command{
		Use:   "show <id>",
		Short: "Print one entry",
		Long: `Prints an entry's content. For image entries, --out writes the PNG to a
file.`,
		Args: cobra.ExactArgs(1),
	}, runShow)
	cmd.Flags().Bool("json", false, "output raw JSON")
	cmd.Flags().String("out", "", "write an image entry's PNG to this file")
	return cmd
}

func runShow(ctx context.Context, cmd *cobra.Command, v *viper.Viper, c *grpcservice.Client, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	resp, err := c.Get(ctx, &grpcservice.EntryRequest{ID: id})
	if err != nil {
		return err
	}
	e := resp.Entry
	if out := v.GetString("out"); out != "" {
		if len(e.Image) == 0 {
			return fmt.Errorf("entry %d has no image", id)
		}
		return os.WriteFile(out, e.Image, 0o600)
	}
	if v.GetBool("json") {
		return printJSON(cmd.OutOrStdout(), e)
	}
	fmt.Fprintln(cmd.OutOrStdout(), e.Content)
	return nil
}

func newCopyCmd() *cobra.Command {
	cmd := clientCmd(&cobra.Command{
		Use:   "copy <id>",
		Short: "Put an entry back on the system clipboard",
		Args:  cobra.ExactArgs(1),
	}, func(ctx context.Context, _ *cobra.Command, v *viper.Viper, c *grpcservice.Client, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, err = c.Copy(ctx, &grpcservice.CopyRequest{ID: id, Format: v.GetString("format")})
		return err
	})
	addFormatFlag(cmd)
	return cmd
}

func newPasteCmd() *cobra.Command {
	cmd := clientCmd(&cobra.Command{
		Use:   "paste <id>",
		Short: "Copy an entry and paste it into the focused application",
		Long: `Like copy, then triggers the paste shortcut in the foreground application
when the daemon has a keystroke injector. Without one it only copies.`,
		Args: cobra.ExactArgs(1),
	}, func(ctx context.Context, _ *cobra.Command, v *viper.Viper, c *grpcservice.Client, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, err = c.Paste(ctx, &grpcservice.CopyRequest{ID: id, Format: v.GetString("format")})
		return err
	})
	addFormatFlag(cmd)
	return cmd
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", "plain", "text format: plain|upper|lower|title|trim")
}

func newPinCmd() *cobra.Command {
	return clientCmd(&cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle whether an entry is pinned",
		Long:  `Pinned entries sort first and are never removed by retention cleanup.`,
		Args:  cobra.ExactArgs(1),
	}, func(ctx context.Context, cmd *cobra.Command, _ *viper.Viper, c *grpcservice.Client, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		resp, err := c.TogglePin(ctx, &grpcservice.EntryRequest{ID: id})
		if err != nil {
			return err
		}
		state := "unpinned"
		if resp.Pinned {
			state = "pinned"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "entry %d %s\n", id, state)
		return nil
	})
}

func newRmCmd() *cobra.Command {
	return clientCmd(&cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete entries",
		Args:  cobra.MinimumNArgs(1),
	}, func(ctx context.Context, cmd *cobra.Command, _ *viper.Viper, c *grpcservice.Client, args []string) error {
		for _, a := range args {
			id, err := parseID(a)
			if err != nil {
				return err
			}
			resp, err := c.Delete(ctx, &grpcservice.EntryRequest{ID: id})
			if err != nil {
				return err
			}
			if !resp.Removed {
				fmt.Fprintf(cmd.ErrOrStderr(), "entry %d does not exist\n", id)
			}
		}
		return nil
	})
}

func newEditCmd() *cobra.Command {
	return clientCmd(&cobra.Command{
		Use:   "edit <id> <content|->",
		Short: "Replace an entry's content",
		Long:  `Replaces an entry's content. Pass "-" to read the new content from stdin.`,
		Args:  cobra.ExactArgs(2),
	}, func(ctx context.Context, cmd *cobra.Command, _ *viper.Viper, c *grpcservice.Client, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		text := args[1]
		if text == "-" {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text = string(b)
		}
		_, err = c.Update(ctx, &grpcservice.UpdateRequest{ID: id, Content: text})
		return err
	})
}
