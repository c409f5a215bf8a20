package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/projecthubv3/projecthub-backend/internal/controller"
	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

type listFlags struct {
	page      int
	size      int
	search    string
	typ       string
	status    string
	hasFeat   string
	hasMarket string
	sortBy    string
	order     string
	asJSON    bool
}

func newListCmd() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of projects",
		Example: `  projects list --type saas-tool --sort features --order desc
  projects list --search ledger --size 48 --page 2 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&f.size, "size", domain.DefaultPageSize, "Page size (12, 24, 48 or 96)")
	cmd.Flags().StringVar(&f.search, "search", "", "Search name, description, type or id")
	cmd.Flags().StringVar(&f.typ, "type", domain.TypeAll, "Project type")
	cmd.Flags().StringVar(&f.status, "status", "", "specification-ready, market-enhanced or pending")
	cmd.Flags().StringVar(&f.hasFeat, "has-features", "", "yes or no")
	cmd.Flags().StringVar(&f.hasMarket, "has-market", "", "yes or no")
	cmd.Flags().StringVar(&f.sortBy, "sort", domain.SortByName, "name, type, status, features or date")
	cmd.Flags().StringVar(&f.order, "order", domain.SortAsc, "asc or desc")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the raw list result as JSON")
	return cmd
}

func runList(out io.Writer, f listFlags) error {
	ctrl := controller.New(newClient(), controller.Options{
		Debounce: cfg.Client.Debounce,
		Timeout:  cfg.Client.Timeout,
		Log:      logger.Named("controller"),
	})
	defer ctrl.Close()

	// page goes last: every filter moves it back to 1
	settings := []struct {
		field controller.Field
		value string
	}{
		{controller.FieldSearch, f.search},
		{controller.FieldType, f.typ},
		{controller.FieldStatus, f.status},
		{controller.FieldHasFeatures, f.hasFeat},
		{controller.FieldHasMarket, f.hasMarket},
		{controller.FieldPageSize, strconv.Itoa(f.size)},
		{controller.FieldSortBy, f.sortBy},
		{controller.FieldSortOrder, f.order},
		{controller.FieldPage, strconv.Itoa(f.page)},
	}
	for _, s := range settings {
		if err := ctrl.SetFilter(s.field, s.value); err != nil {
			return err
		}
	}
	ctrl.Refresh()
	// a page past the end is answered by a second fetch of the last page
	for ctrl.Flush() {
	}

	v := ctrl.View()
	if v.Err != nil {
		return v.Err
	}
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v.Result)
	}
	return printView(out, v)
}

func printView(out io.Writer, v controller.View) error {
	t := table.New().Headers("ID", "NAME", "TYPE", "STATUS", "FEATURES", "CREATED")
	for _, p := range v.Result.Projects {
		feats := "-"
		if p.Features != nil {
			feats = fmt.Sprintf("%d core / %d adv", p.Features.Core, p.Features.Advanced)
		}
		t.Row(p.ID, p.Name, p.Type, p.Status, feats, p.CreatedAt)
	}
	if _, err := fmt.Fprintln(out, t.Render()); err != nil {
		return err
	}

	if v.Result.Total == 0 {
		_, err := fmt.Fprintln(out, "No projects match.")
		return err
	}
	_, err := fmt.Fprintf(out, "Showing %d to %d of %d projects (page %d of %d)\n",
		v.From, v.To, v.Result.Total, v.Query.Page, v.Result.TotalPages)
	return err
}
