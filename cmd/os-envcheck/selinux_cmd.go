package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/os-envcheck/internal/utils/selinux"
)

// selinux command flags
var (
	selinuxContext   string
	selinuxRecursive bool
)

// createSELinuxCommand creates the selinux command and its subcommands
func createSELinuxCommand() *cobra.Command {
	selinuxCmd := &cobra.Command{
		Use:   "selinux",
		Short: "Read and set SELinux file contexts",
	}

	getCmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Print the SELinux label of a path",
		Args:  cobra.ExactArgs(1),
		RunE:  executeSELinuxGet,
	}

	setCmd := &cobra.Command{
		Use:   "set PATH",
		Short: "Set the SELinux type of a path with chcon",
		Long: `Set applies an SELinux type to PATH so containers may use it. Hosts
without SELinux tooling, or with SELinux disabled, are left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: executeSELinuxSet,
	}
	setCmd.Flags().StringVar(&selinuxContext, "context", "",
		"SELinux type to apply (default from config, svirt_sandbox_file_t)")
	setCmd.Flags().BoolVarP(&selinuxRecursive, "recursive", "R", true,
		"Apply to everything below PATH (--recursive=false for PATH only)")

	enforcingCmd := &cobra.Command{
		Use:   "enforcing",
		Short: "Print true when SELinux is enforcing, false when permissive",
		Args:  cobra.NoArgs,
		RunE:  executeSELinuxEnforcing,
	}

	selinuxCmd.AddCommand(getCmd, setCmd, enforcingCmd)
	return selinuxCmd
}

func executeSELinuxGet(cmd *cobra.Command, args []string) error {
	label, err := selinux.GetContext(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), label)
	return nil
}

func executeSELinuxSet(cmd *cobra.Command, args []string) error {
	context := selinuxContext
	if context == "" {
		context = helpers.SELinuxContext()
	}
	return selinux.SetContext(args[0], context, selinuxRecursive)
}

func executeSELinuxEnforcing(cmd *cobra.Command, args []string) error {
	enforcing, err := selinux.IsEnforcing()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), enforcing)
	return nil
}
