package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipstream/internal/grpcservice"
)

func newIgnoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignore",
		Short: "Manage applications whose copies are not recorded",
		Long: `Copies made while an ignored application has focus are not recorded. An
application is ignored when its name contains an ignored name, compared
case-insensitively, so "keepass" also covers "KeePassXC".`,
	}

	list := clientCmd(&cobra.Command{
		Use:   "list",
		Short: "List ignored applications",
		Args:  cobra.NoArgs,
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, c *grpcservice.Client, _ []string) error {
		resp, err := c.ListIgnoredApps(ctx)
		if err != nil {
			return err
		}
		if v.GetBool("json") {
			return printJSON(cmd.OutOrStdout(), resp.Names)
		}
		for _, n := range resp.Names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	})
	list.Flags().Bool("json", false, "output raw JSON")

	add := clientCmd(&cobra.Command{
		Use:   "add <name>...",
		Short: "Ignore applications",
		Args:  cobra.MinimumNArgs(1),
	}, func(ctx context.Context, _ *cobra.Command, _ *viper.Viper, c *grpcservice.Client, args []string) error {
		for _, name := range args {
			if _, err := c.AddIgnoredApp(ctx, &grpcservice.IgnoredAppRequest{Name: name}); err != nil {
				return err
			}
		}
		return nil
	})

	remove := clientCmd(&cobra.Command{
		Use:     "remove <name>...",
		Aliases: []string{"rm"},
		Short:   "Stop ignoring applications",
		Args:    cobra.MinimumNArgs(1),
	}, func(ctx context.Context, cmd *cobra.Command, _ *viper.Viper, c *grpcservice.Client, args []string) error {
		for _, name := range args {
			resp, err := c.RemoveIgnoredApp(ctx, &grpcservice.IgnoredAppRequest{Name: name})
			if err != nil {
				return err
			}
			if !resp.Removed {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s was not ignored\n", name)
			}
		}
		return nil
	})

	cmd.AddCommand(list, add, remove)
	return cmd
}

func newSettingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setting",
		Short: "Read and write stored settings",
	}

	get := clientCmd(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting",
		Args:  cobra.ExactArgs(1),
	}, func(ctx context.Context, cmd *cobra.Command, _ *viper.Viper, c *grpcservice.Client, args []string) error {
		resp, err := c.GetSetting(ctx, &grpcservice.SettingRequest{Key: args[0]})
		if err != nil {
			return err
		}
		if !resp.Found {
			return fmt.Errorf("setting %q is not set", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Value)
		return nil
	})

	set := clientCmd(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
	}, func(ctx context.Context, _ *cobra.Command, _ *viper.Viper, c *grpcservice.Client, args []string) error {
		_, err := c.SetSetting(ctx, &grpcservice.SettingRequest{Key: args[0], Value: args[1]})
		return err
	})

	cmd.AddCommand(get, set)
	return cmd
}
