package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/open-edge-platform/os-envcheck/internal/ospackage"
	"github.com/open-edge-platform/os-envcheck/internal/ospackage/rpmdb"
	"github.com/open-edge-platform/os-envcheck/internal/utils/logger"
)

// rpm command flags
var (
	listFormat     string = "text" // "text" | "json" | "yaml"
	checkProgress  bool
	checkReportDir string
)

// createRPMCommand creates the rpm command and its subcommands
func createRPMCommand() *cobra.Command {
	rpmCmd := &cobra.Command{
		Use:   "rpm",
		Short: "Query installed RPM packages",
	}

	queryCmd := &cobra.Command{
		Use:   "query NAME...",
		Short: "Print name-version-release.arch of installed packages",
		Args:  cobra.MinimumNArgs(1),
		RunE:  executeRPMQuery,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every installed package",
		Args:  cobra.NoArgs,
		RunE:  executeRPMList,
	}
	listCmd.Flags().StringVar(&listFormat, "format", "text",
		"Output format: text, json or yaml")

	checkCmd := &cobra.Command{
		Use:   "check [NAME[>=VERSION]...]",
		Short: "Verify required packages are installed",
		Long: `Check looks up every requirement and fails when a package is missing or
older than its minimum version. Without arguments the requirements of the
configuration file are checked.`,
		RunE: executeRPMCheck,
	}
	checkCmd.Flags().BoolVar(&checkProgress, "progress", false,
		"Show a progress bar on stderr")
	checkCmd.Flags().StringVar(&checkReportDir, "report-dir", "",
		"Also append the results to rpmcheck-<run id>.txt in this directory")

	fileCmd := &cobra.Command{
		Use:   "file PATH...",
		Short: "Print name-version-release.arch of package files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  executeRPMFile,
	}

	vercmpCmd := &cobra.Command{
		Use:   "vercmp VERSION1 VERSION2",
		Short: "Compare two version strings with rpm ordering (-1, 0 or 1)",
		Args:  cobra.ExactArgs(2),
		RunE:  executeRPMVercmp,
	}

	rpmCmd.AddCommand(queryCmd, listCmd, checkCmd, fileCmd, vercmpCmd)
	return rpmCmd
}

func executeRPMQuery(cmd *cobra.Command, args []string) error {
	cache := rpmdb.Shared()
	out := cmd.OutOrStdout()
	for _, name := range args {
		nvra, err := cache.Get(name)
		if err != nil {
			return fmt.Errorf("querying %s: %w", name, err)
		}
		fmt.Fprintln(out, nvra.String())
	}
	return nil
}

func executeRPMList(cmd *cobra.Command, args []string) error {
	records, err := rpmdb.Shared().Records()
	if err != nil {
		return fmt.Errorf("listing packages: %w", err)
	}
	return writeRecords(cmd, records, listFormat)
}

func writeRecords(cmd *cobra.Command, records []ospackage.NVRA, format string) error {
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "text":
		for _, r := range records {
			fmt.Fprintln(out, r.String())
		}
		return nil
	case "json":
		b, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(b))
		return nil
	case "yaml":
		b, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, _ = out.Write(b)
		return nil
	default:
		return fmt.Errorf("invalid --format %q (expected text|json|yaml)", format)
	}
}

func executeRPMCheck(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	reqs := helpers.Requirements()
	if len(args) > 0 {
		reqs = make([]rpmdb.Requirement, 0, len(args))
		for _, arg := range args {
			req, err := rpmdb.ParseRequirement(arg)
			if err != nil {
				return err
			}
			reqs = append(reqs, req)
		}
	}
	if len(reqs) == 0 {
		return fmt.Errorf("no requirements given on the command line or in the configuration")
	}

	var bar *progressbar.ProgressBar
	if checkProgress {
		bar = progressbar.NewOptions(len(reqs),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("checking"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
		)
	}

	out := cmd.OutOrStdout()
	report := logger.NewStringListReport(runID)
	failed := 0
	_, err := rpmdb.Shared().CheckAll(reqs, func(res rpmdb.CheckResult) {
		if bar != nil {
			bar.Describe(fmt.Sprintf("checked %s", res.Requirement.Name))
			_ = bar.Add(1)
		}
		var line string
		if res.Satisfied() {
			line = fmt.Sprintf("OK   %s (%s)", res.Installed, res.Requirement)
		} else {
			failed++
			line = fmt.Sprintf("FAIL %s: %v", res.Requirement, res.Err)
		}
		report.Add(line)
		fmt.Fprintln(out, line)
	})
	if bar != nil {
		_ = bar.Finish()
	}

	if checkReportDir != "" {
		path, werr := report.WriteToFile(checkReportDir, "rpmcheck")
		if werr != nil {
			return fmt.Errorf("writing check report: %w", werr)
		}
		log.Infof("Check report written to %s", path)
	}

	if err != nil {
		log.Errorf("%d of %d requirements not satisfied", failed, len(reqs))
		return fmt.Errorf("%d of %d requirements not satisfied: %w", failed, len(reqs), err)
	}
	log.Infof("All %d requirements satisfied", len(reqs))
	return nil
}

func executeRPMFile(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, path := range args {
		nvra, err := rpmdb.QueryFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, nvra.String())
	}
	return nil
}

func executeRPMVercmp(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), ospackage.Vercmp(args[0], args[1]))
	return nil
}
