package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kosztorapp/kosztor/internal/api"
	"github.com/kosztorapp/kosztor/internal/app"
	"github.com/kosztorapp/kosztor/internal/cache"
	"github.com/kosztorapp/kosztor/internal/credential"
	"github.com/kosztorapp/kosztor/internal/model"
	"github.com/kosztorapp/kosztor/internal/scheduler"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "kosztor",
		Short: "Terminal cost-estimation editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI("")
		},
	}

	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", model.DefaultConfigPath(), "config file path",
	)

	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(projectsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadToken resolves the API token: environment first, then keyring.
func loadToken() (string, error) {
	if token := os.Getenv("KOSZTOR_TOKEN"); token != "" {
		return token, nil
	}
	token, err := credential.Get(credential.TokenKey)
	if err != nil || token == "" {
		return "", fmt.Errorf(
			"no API token; set KOSZTOR_TOKEN or run 'kosztor token set'",
		)
	}
	return token, nil
}

func buildClient() (*api.Client, *model.AppConfig, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	token, err := loadToken()
	if err != nil {
		return nil, nil, err
	}
	return api.NewClient(cfg.API.BaseURL, token), cfg, nil
}

func openCache(cfg *model.AppConfig) (*cache.Store, error) {
	dir := filepath.Dir(cfg.Storage.CachePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}
	return cache.Open(cfg.Storage.CachePath)
}

// runTUI starts the editor, optionally directly inside one project.
func runTUI(projectID string) error {
	client, cfg, err := buildClient()
	if err != nil {
		return err
	}

	cacheStore, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer cacheStore.Close()

	debounce := time.Duration(cfg.Editor.DebounceMs) * time.Millisecond
	writer := scheduler.New(client, debounce)

	m := app.New(client, cacheStore, writer)
	var initCmd tea.Cmd
	if projectID != "" {
		initCmd = m.OpenProject(projectID)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if initCmd != nil {
		go func() {
			if msg := initCmd(); msg != nil {
				p.Send(msg)
			}
		}()
	}

	_, err = p.Run()
	return err
}

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [project-id]",
		Short: "Open a project directly in the editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(args[0])
		},
	}
}

func projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects without the editor",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := buildClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			projects, err := client.ListProjects(ctx)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println("No projects yet. Use 'kosztor projects create' to add one.")
				return nil
			}
			for _, p := range projects {
				fmt.Printf("%-12s  %s\n", p.ID, p.Name)
			}
			return nil
		},
	})

	var description string
	create := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := buildClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			p, err := client.CreateProject(ctx, args[0], description)
			if err != nil {
				return err
			}
			fmt.Printf("Created project %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "project description")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [project-id]",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := buildClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := client.DeleteProject(ctx, args[0]); err != nil {
				return err
			}

			// Drop the local mirror too.
			if cacheStore, err := openCache(cfg); err == nil {
				_ = cacheStore.Delete(ctx, args[0])
				cacheStore.Close()
			}

			fmt.Printf("Deleted project %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [project-id] [pdf|excel|csv]",
		Short: "Download a server-side export",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := api.ExportFormat(args[1])
			switch format {
			case api.ExportPDF, api.ExportExcel, api.ExportCSV:
			default:
				return fmt.Errorf("unknown format %q (want pdf, excel, or csv)", args[1])
			}

			client, _, err := buildClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			data, filename, err := client.Export(ctx, args[0], format)
			if err != nil {
				return err
			}
			if err := os.WriteFile(filename, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%d bytes)\n", filename, len(data))
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the API token in the system keyring",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [token]",
		Short: "Store the API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credential.Set(credential.TokenKey, args[0]); err != nil {
				return err
			}
			fmt.Println("Token stored.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the stored API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credential.Delete(credential.TokenKey); err != nil {
				return err
			}
			fmt.Println("Token removed.")
			return nil
		},
	})

	return cmd
}
