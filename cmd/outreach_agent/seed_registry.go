package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-scout/internal/config"
	"github.com/jonathan/outreach-scout/internal/registry"
	"github.com/jonathan/outreach-scout/internal/snapshot"
)

var seedRegistryCommand = &cobra.Command{
	Use:   "seed-registry",
	Short: "Rebuild the organization registry from a snapshot and stored letters",
	Long: `Registers every accepted candidate of a snapshot and marks every organization with a stored
letter as contacted. Existing records are updated, never removed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return seedRegistry(cmd.OutOrStdout(), seedRegistryPath, seedSnapshotPath, seedLettersDir)
	},
}

var (
	seedRegistryPath string
	seedSnapshotPath string
	seedLettersDir   string
)

func init() {
	defaults := config.Defaults("")
	seedRegistryCommand.Flags().StringVar(&seedRegistryPath, "registry", defaults.RegistryPath, "Path to the registry JSON file")
	seedRegistryCommand.Flags().StringVar(&seedSnapshotPath, "snapshot", defaults.SnapshotPath, "Snapshot with accepted candidates (skipped when empty)")
	seedRegistryCommand.Flags().StringVar(&seedLettersDir, "letters", defaults.LettersDir, "Directory of stored letters (skipped when empty)")

	rootCmd.AddCommand(seedRegistryCommand)
}

func seedRegistry(w io.Writer, registryPath, snapshotPath, lettersDir string) error {
	reg, err := registry.Load(registryPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(snapshotPath); snapshotPath != "" && os.IsNotExist(err) {
		_, _ = fmt.Fprintf(w, "Snapshot: %s not found, skipped\n", snapshotPath)
	} else if snapshotPath != "" {
		snap, err := snapshot.Load(snapshotPath)
		if err != nil {
			return err
		}
		_, report := reg.SeedFromCandidates(snap.Accepted)
		_, _ = fmt.Fprintf(w, "Snapshot: %d accepted, %d duplicates\n", report.Accepted, len(report.Duplicates))
		for _, d := range report.Duplicates {
			_, _ = fmt.Fprintf(w, "  duplicate: %s (%s)\n", d.Name, d.URL)
		}
	}

	if lettersDir != "" {
		n, err := reg.SeedFromLetters(lettersDir)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "Letters: %d organizations marked contacted\n", n)
	}

	path, err := reg.Save()
	if err != nil {
		return err
	}
	if path == "" {
		path = registryPath
	}
	_, _ = fmt.Fprintf(w, "Registry: %d records in %s\n", reg.Len(), path)
	return nil
}
