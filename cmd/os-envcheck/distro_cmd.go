package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/open-edge-platform/os-envcheck/internal/utils/logger"
	"github.com/open-edge-platform/os-envcheck/internal/utils/system"
)

// distro command flags
var (
	distroHint   string
	showEvidence bool
)

// createDistroCommand creates the distro command and its subcommands
func createDistroCommand() *cobra.Command {
	distroCmd := &cobra.Command{
		Use:   "distro",
		Short: "Detect the canonical distribution name",
	}

	detectCmd := &cobra.Command{
		Use:   "detect [HINT]",
		Short: "Run the distro probes against a hint",
		Long: `Detect runs every configured probe against HINT and prints the single
distribution they agree on. HINT is os-release or redhat-release text and
may be passed positionally or with --hint, not both. It defaults to empty.`,
		RunE: executeDistroDetect,
	}
	detectCmd.Flags().StringVar(&distroHint, "hint", "", "Hint passed to every probe")
	detectCmd.Flags().BoolVar(&showEvidence, "evidence", false, "Also print what each probe matched")

	hostCmd := &cobra.Command{
		Use:   "host",
		Short: "Detect the canonical distribution of this host",
		Args:  cobra.NoArgs,
		RunE:  executeDistroHost,
	}
	hostCmd.Flags().BoolVar(&showEvidence, "evidence", false, "Also print what each probe matched")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Print os-release details and package managers of this host as YAML",
		Args:  cobra.NoArgs,
		RunE:  executeDistroInfo,
	}

	distroCmd.AddCommand(detectCmd, hostCmd, infoCmd)
	return distroCmd
}

func executeDistroDetect(cmd *cobra.Command, args []string) error {
	hints := args
	if cmd.Flags().Changed("hint") {
		if len(args) > 0 {
			return fmt.Errorf("hint given both as argument and with --hint")
		}
		hints = []string{distroHint}
	}

	cd, err := detector.Detect(hints...)
	if err != nil {
		return err
	}
	printCanonical(cmd, cd)
	return nil
}

func executeDistroHost(cmd *cobra.Command, args []string) error {
	cd, err := detector.DetectHost()
	if err != nil {
		return err
	}
	printCanonical(cmd, cd)
	return nil
}

func printCanonical(cmd *cobra.Command, cd *system.CanonicalDistro) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cd.String())
	if showEvidence {
		for _, name := range system.SortedProbeNames(cd.Matches) {
			fmt.Fprintf(out, "  %s: %s\n", name, cd.Matches[name])
		}
	}
}

func executeDistroInfo(cmd *cobra.Command, args []string) error {
	dist, err := system.DetectOsDistribution()
	if err != nil {
		return err
	}
	hostInfo, err := system.GetHostOsInfo()
	if err != nil {
		return err
	}

	pkgManager, err := system.GetHostOsPkgManager()
	if err != nil {
		logger.Logger().Warnf("No host package manager: %v", err)
	}

	b, err := yaml.Marshal(struct {
		*system.OsDistribution
		Arch       string `json:"arch"`
		PkgManager string `json:"pkgManager,omitempty"`
	}{dist, hostInfo["arch"], pkgManager})
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	_, _ = cmd.OutOrStdout().Write(b)
	return nil
}
