package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-scout/internal/blacklist"
	"github.com/jonathan/outreach-scout/internal/config"
)

var blacklistCommand = &cobra.Command{
	Use:   "blacklist",
	Short: "Inspect and edit the domain blacklist",
}

var blacklistListCommand = &cobra.Command{
	Use:   "list",
	Short: "List blacklisted domains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listBlacklist(cmd.OutOrStdout(), blacklistPath, blacklist.Tag(blacklistTag))
	},
}

var blacklistAddCommand = &cobra.Command{
	Use:   "add <url-or-domain> <reason>",
	Short: "Blacklist a domain manually",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addBlacklist(cmd.OutOrStdout(), blacklistPath, args[0], args[1])
	},
}

var blacklistRemoveCommand = &cobra.Command{
	Use:   "remove <url-or-domain>",
	Short: "Remove a domain from the blacklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return removeBlacklist(cmd.OutOrStdout(), blacklistPath, args[0])
	},
}

var (
	blacklistPath string
	blacklistTag  string
)

func init() {
	blacklistCommand.PersistentFlags().StringVar(&blacklistPath, "file", config.Defaults("").BlacklistPath, "Path to the blacklist JSON file")
	blacklistListCommand.Flags().StringVar(&blacklistTag, "tag", "", "Only list entries with this tag (auto, coordinator, contacted, manual)")

	blacklistCommand.AddCommand(blacklistListCommand, blacklistAddCommand, blacklistRemoveCommand)
	rootCmd.AddCommand(blacklistCommand)
}

func listBlacklist(w io.Writer, path string, tag blacklist.Tag) error {
	m, err := blacklist.Load(path)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DOMAIN\tTAG\tADDED\tREASON")
	n := 0
	for _, e := range m.Entries() {
		if tag != "" && e.Tag != tag {
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Domain, e.Tag, e.AddedAt, e.Reason)
		n++
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%d entries\n", n)
	return nil
}

func addBlacklist(w io.Writer, path, target, reason string) error {
	m, err := blacklist.Load(path)
	if err != nil {
		return err
	}
	entry, err := m.Add(target, reason, blacklist.AddOptions{Tag: blacklist.TagManual, Source: "cli"})
	if err != nil {
		return err
	}
	if _, err := m.Persist(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Blacklisted %s (%s)\n", entry.Domain, entry.Reason)
	return nil
}

func removeBlacklist(w io.Writer, path, target string) error {
	m, err := blacklist.Load(path)
	if err != nil {
		return err
	}
	if !m.Remove(target) {
		return fmt.Errorf("%s is not blacklisted", target)
	}
	if _, err := m.Persist(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Removed %s\n", target)
	return nil
}
