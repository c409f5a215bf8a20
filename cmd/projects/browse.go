package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/projecthubv3/projecthub-backend/internal/browser"
	"github.com/projecthubv3/projecthub-backend/internal/controller"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse projects interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		ctrl := controller.New(client, controller.Options{
			Debounce: cfg.Client.Debounce,
			Timeout:  cfg.Client.Timeout,
			Deleter:  client,
			Log:      logger.Named("controller"),
		})
		defer ctrl.Close()

		_, err := tea.NewProgram(browser.New(ctrl), tea.WithAltScreen()).Run()
		return err
	},
}
