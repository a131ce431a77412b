package commands

import (
	"github.com/spf13/cobra"

	"github.com/shanep/canvas-tools/cmd/canvastools/handlers"
)

// VMs returns the vms command group.
func VMs() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vms",
		Short: "Manage student EC2 instances",
	}

	cmd.AddCommand(VMsLaunch())
	cmd.AddCommand(VMsTerminate())
	cmd.AddCommand(VMsCheck())
	cmd.AddCommand(VMsCleanupCheck())
	cmd.AddCommand(VMsTemplates())

	return cmd
}

// VMsLaunch returns the vms launch command.
//
// It launches one instance per student on the course roster, waits for the
// batch to come up, configures SSH access, and writes per-student
// connection material.
func VMsLaunch() *cobra.Command {
	var configPath, courseID, outDir string

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch one EC2 instance per student in a course",
		Long: `Launch creates one EC2 instance per student on the Canvas roster.

Instances are created from the configured AWS Launch Template, tagged with
the course id and student account name, and configured for key-based SSH
access using a fresh keypair per student. With --out, a per-student
connection script and document plus a results CSV are written.

Example:
  canvastools vms launch -c canvastools.yaml --course 12345 -o ./out`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.LaunchVMs(cmd.Context(), configPath, courseID, outDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&courseID, "course", "", "Canvas course ID (required)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write connection material into")
	_ = cmd.MarkFlagRequired("course")

	return cmd
}

// VMsTerminate returns the vms terminate command.
func VMsTerminate() *cobra.Command {
	var configPath, courseID string

	cmd := &cobra.Command{
		Use:   "terminate",
		Short: "Terminate all EC2 instances for a course",
		Long: `Terminate finds every instance tagged with the course id and shuts it
down, waiting until the whole group reaches the terminated state.

Example:
  canvastools vms terminate -c canvastools.yaml --course 12345

WARNING: This operation is irreversible. All instance data will be lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.TerminateVMs(cmd.Context(), configPath, courseID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&courseID, "course", "", "Canvas course ID (required)")
	_ = cmd.MarkFlagRequired("course")

	return cmd
}

// VMsCheck returns the vms check command.
func VMsCheck() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Launch a throwaway instance and verify the full SSH setup path",
		Long: `Check exercises the launch pipeline end to end with a single test
instance: launch, wait for running, install a generated key over the
administrative SSH channel, then log in with that key and run a probe
command. The instance is tagged for cleanup and left running so a failed
check can be inspected; remove it with "vms cleanup-check".

Example:
  canvastools vms check -c canvastools.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.CheckLaunch(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	return cmd
}

// VMsCleanupCheck returns the vms cleanup-check command.
func VMsCleanupCheck() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cleanup-check",
		Short: "Terminate instances left behind by previous checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.CleanupChecks(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	return cmd
}

// VMsTemplates returns the vms templates command.
func VMsTemplates() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List available AWS launch templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ListTemplates(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	return cmd
}
