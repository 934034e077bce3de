package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/os-envcheck/internal/utils/sysconfig"
)

// options command flags
var (
	optionsRemove []string
	optionsAdd    []string
	optionsKey    string
)

// createOptionsCommand creates the options command and its subcommands
func createOptionsCommand() *cobra.Command {
	optionsCmd := &cobra.Command{
		Use:   "options",
		Short: "Edit KEY='...' option lines such as OPTIONS in /etc/sysconfig/docker",
	}

	editCmd := &cobra.Command{
		Use:   "edit LINE",
		Short: "Print LINE with tokens removed and added",
		Long: `Edit rewrites a single KEY=VALUE line. Removed tokens leave their
surrounding spaces in place; added tokens are appended when missing. The
key defaults to OPTIONS.`,
		Args: cobra.ExactArgs(1),
		RunE: executeOptionsEdit,
	}

	editFileCmd := &cobra.Command{
		Use:   "edit-file [PATH]",
		Short: "Edit the KEY= line of a sysconfig file in place",
		Args:  cobra.MaximumNArgs(1),
		RunE:  executeOptionsEditFile,
	}

	for _, c := range []*cobra.Command{editCmd, editFileCmd} {
		c.Flags().StringArrayVar(&optionsRemove, "remove", nil, "Token to remove (repeatable)")
		c.Flags().StringArrayVar(&optionsAdd, "add", nil, "Token to append when missing (repeatable)")
		c.Flags().StringVar(&optionsKey, "key", "", "Assignment key (default from config, OPTIONS)")
	}

	optionsCmd.AddCommand(editCmd, editFileCmd)
	return optionsCmd
}

func resolveOptionsKey() string {
	if optionsKey != "" {
		return optionsKey
	}
	return helpers.SysconfigKey()
}

func executeOptionsEdit(cmd *cobra.Command, args []string) error {
	line, err := sysconfig.EditAssignment(resolveOptionsKey(), args[0], optionsRemove, optionsAdd)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), line)
	return nil
}

func executeOptionsEditFile(cmd *cobra.Command, args []string) error {
	path := helpers.SysconfigFile()
	if len(args) == 1 {
		path = args[0]
	}
	line, err := sysconfig.EditFile(path, resolveOptionsKey(), optionsRemove, optionsAdd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}
