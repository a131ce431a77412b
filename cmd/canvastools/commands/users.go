package commands

import (
	"github.com/spf13/cobra"

	"github.com/shanep/canvas-tools/cmd/canvastools/handlers"
)

// Users returns the users command group.
func Users() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage student IAM accounts",
	}

	cmd.AddCommand(UsersProvision())
	cmd.AddCommand(UsersRemove())
	cmd.AddCommand(UsersRotate())
	cmd.AddCommand(UsersUpdatePolicy())

	return cmd
}

// UsersProvision returns the users provision command.
//
// It creates one IAM user per student on the course roster, each with a
// console login that must be reset at first sign-in and the shared
// region-restricted EC2 policy attached.
func UsersProvision() *cobra.Command {
	var configPath, courseID, outDir string

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create one IAM user per student in a course",
		Long: `Provision creates one IAM user per student on the Canvas roster.

Each new user gets a generated temporary password (reset required at first
login) and the shared EC2-only managed policy. Existing users are skipped,
so the command is safe to re-run after adding students. With --out, a
results CSV and per-student credential emails are written.

Example:
  canvastools users provision -c canvastools.yaml --course 12345 -o ./out`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ProvisionUsers(cmd.Context(), configPath, courseID, outDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&courseID, "course", "", "Canvas course ID (required)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write credentials into")
	_ = cmd.MarkFlagRequired("course")

	return cmd
}

// UsersRemove returns the users remove command.
func UsersRemove() *cobra.Command {
	var configPath, courseID string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Delete all student IAM users for a course",
		Long: `Remove deletes the IAM user of every student on the Canvas roster,
including login profiles, attached and inline policies, and access keys.
Missing users are reported as skipped, so a partially-removed course can
be retried to completion.

Example:
  canvastools users remove -c canvastools.yaml --course 12345

WARNING: This operation is irreversible.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.RemoveUsers(cmd.Context(), configPath, courseID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&courseID, "course", "", "Canvas course ID (required)")
	_ = cmd.MarkFlagRequired("course")

	return cmd
}

// UsersRotate returns the users rotate command.
func UsersRotate() *cobra.Command {
	var configPath, courseID, outDir string

	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Reset the console password of every student in a course",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.RotateUsers(cmd.Context(), configPath, courseID, outDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&courseID, "course", "", "Canvas course ID (required)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write credentials into")
	_ = cmd.MarkFlagRequired("course")

	return cmd
}

// UsersUpdatePolicy returns the users update-policy command.
func UsersUpdatePolicy() *cobra.Command {
	var configPath, courseID string

	cmd := &cobra.Command{
		Use:   "update-policy",
		Short: "Publish the current access policy and re-attach it to every student",
		Long: `Update-policy publishes the current EC2-only policy document as the new
default version of the shared managed policy and re-attaches it to every
student user, migrating any user still carrying the legacy inline policy.

The managed policy keeps at most five stored versions; publishing a sixth
deletes the oldest non-default version first.

Example:
  canvastools users update-policy -c canvastools.yaml --course 12345`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.UpdateUserPolicies(cmd.Context(), configPath, courseID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&courseID, "course", "", "Canvas course ID (required)")
	_ = cmd.MarkFlagRequired("course")

	return cmd
}
