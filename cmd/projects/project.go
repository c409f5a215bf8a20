package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

var getCmd = &cobra.Command{
	Use:   "get [project-id]",
	Short: "Print one project as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Client.Timeout)
		defer cancel()

		p, err := newClient().GetProject(ctx, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [project-id]",
	Short: "Delete a project and its generated files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Client.Timeout)
		defer cancel()

		if err := newClient().DeleteProject(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

type createFlags struct {
	name         string
	typ          string
	description  string
	requirements string
}

func newCreateCmd() *cobra.Command {
	var f createFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project from a requirements document (step 0)",
		Example: `  projects create --name "Invoice Hub" --type saas-tool --requirements requirements.md
  generate-reqs | projects create --name Runner --type mobile-app --requirements -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().StringVar(&f.name, "name", "", "Project name")
	cmd.Flags().StringVar(&f.typ, "type", "", "Project type, e.g. saas-tool")
	cmd.Flags().StringVar(&f.description, "description", "", "Short description")
	cmd.Flags().StringVar(&f.requirements, "requirements", "", "Markdown requirements file, or - for stdin")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("requirements")
	return cmd
}

func runCreate(ctx context.Context, stdin io.Reader, out io.Writer, f createFlags) error {
	var (
		reqs []byte
		err  error
	)
	if f.requirements == "-" {
		reqs, err = io.ReadAll(stdin)
	} else {
		reqs, err = os.ReadFile(f.requirements)
	}
	if err != nil {
		return fmt.Errorf("read requirements: %w", err)
	}

	in := domain.NewProject{Name: f.name, Type: f.typ, Description: f.description, Requirements: string(reqs)}
	if err := in.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Client.Timeout)
	defer cancel()

	p, err := newClient().CreateProject(ctx, in)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "created %s\n", p.ID)
	return err
}
