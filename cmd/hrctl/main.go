package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucidata/hr-core-go/internal/app"
	"github.com/lucidata/hr-core-go/internal/config"
	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/document"
	"github.com/lucidata/hr-core-go/internal/domain/user"
	"github.com/lucidata/hr-core-go/internal/domain/workflow"
	"github.com/lucidata/hr-core-go/internal/pkg/cron"
	"github.com/lucidata/hr-core-go/internal/pkg/jwt"
	"github.com/lucidata/hr-core-go/internal/pkg/storage"
)

var rootCmd = &cobra.Command{
	Use:   "hrctl",
	Short: "Lucidata HR admin CLI",
	Long: `hrctl operates on the same record store as the API server.
- migrate: apply pending schema migrations.
- seed: load employees, documents and workflow requests from a YAML file.
- documents: list expiring documents or run the expiry scan once.
- workflows: show one request with its approval log.
- token: mint a bearer token for local testing.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("HRCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("driver", "", "storage driver (postgres or sqlite), overrides STORAGE_DRIVER")
	rootCmd.PersistentFlags().String("sqlite-path", "", "sqlite database file, overrides SQLITE_PATH")
	rootCmd.PersistentFlags().String("actor", "", "audit actor recorded for changes")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("driver", rootCmd.PersistentFlags().Lookup("driver"))
	_ = viper.BindPFlag("sqlite-path", rootCmd.PersistentFlags().Lookup("sqlite-path"))
	_ = viper.BindPFlag("actor", rootCmd.PersistentFlags().Lookup("actor"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(documentsCmd())
	rootCmd.AddCommand(workflowsCmd())
	rootCmd.AddCommand(tokenCmd())
}

// loadConfig applies the flag overrides on top of the environment before
// config.Load validates it.
func loadConfig() (*config.Config, error) {
	if d := viper.GetString("driver"); d != "" {
		if err := os.Setenv("STORAGE_DRIVER", d); err != nil {
			return nil, err
		}
	}
	if p := viper.GetString("sqlite-path"); p != "" {
		if err := os.Setenv("SQLITE_PATH", p); err != nil {
			return nil, err
		}
	}
	return config.Load()
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repos, err := app.OpenRepositories(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			repos.Close()
			fmt.Printf("schema up to date (%s)\n", cfg.Storage.Driver)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load records from a YAML seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := readSeedFile(file)
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(ctx context.Context, cfg *config.Config, s app.Services) error {
				res, err := applySeed(ctx, s, seed)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(res)
				}
				fmt.Printf("seeded %d employees, %d documents, %d workflow requests\n", res.Employees, res.Documents, res.Workflows)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file")
	return cmd
}

func documentsCmd() *cobra.Command {
	docs := &cobra.Command{Use: "documents", Short: "Employee documents"}
	docs.AddCommand(documentsExpiringCmd())
	docs.AddCommand(documentsScanCmd())
	return docs
}

func documentsExpiringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expiring",
		Short: "List documents in Warning or Expired status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, cfg *config.Config, s app.Services) error {
				items, err := s.Document.ListExpiring(ctx, time.Now())
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				renderDocuments(items)
				return nil
			})
		},
	}
}

func documentsScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run the document expiry scan once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, cfg *config.Config, s app.Services) error {
				scheduler := cron.NewScheduler()
				cron.NewDocumentJobs(s.Document, s.Notification, cfg.Documents.ScanInterval).RegisterJobs(scheduler)
				if err := scheduler.Trigger(ctx, cron.DocumentExpiryScan); err != nil {
					return err
				}
				for _, st := range scheduler.Status() {
					fmt.Printf("%s completed in %s\n", st.Name, st.Duration.Round(time.Millisecond))
				}
				return nil
			})
		},
	}
}

func workflowsCmd() *cobra.Command {
	wf := &cobra.Command{Use: "workflows", Short: "Approval workflow requests"}
	wf.AddCommand(workflowShowCmd())
	return wf
}

func workflowShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a workflow request and its approval log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, cfg *config.Config, s app.Services) error {
				req, err := s.Workflow.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(req)
				}
				renderWorkflow(req)
				return nil
			})
		},
	}
}

func tokenCmd() *cobra.Command {
	var sub, role, employeeID, name string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !user.Role(role).IsValid() {
				return fmt.Errorf("unknown role %q", role)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
			if err != nil {
				return err
			}
			var emp *string
			if employeeID != "" {
				emp = &employeeID
			}
			tok, exp, err := svc.GenerateToken(sub, user.Role(role), emp, name)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]interface{}{"token": tok, "expires_at": exp})
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "", "token subject")
	cmd.Flags().StringVar(&role, "role", string(user.RoleEmployee), "role claim")
	cmd.Flags().StringVar(&employeeID, "employee-id", "", "linked employee id")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

func withServices(ctx context.Context, fn func(context.Context, *config.Config, app.Services) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	repos, err := app.OpenRepositories(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer repos.Close()

	fileStorage, err := storage.NewLocalStorage(cfg.Files.BasePath, cfg.Files.BaseURL)
	if err != nil {
		return err
	}
	services := app.NewServices(cfg, repos, fileStorage)
	defer services.Stop()

	if actor := viper.GetString("actor"); actor != "" {
		ctx = audit.WithActor(ctx, actor)
	}
	return fn(ctx, cfg, services)
}

func renderDocuments(items []document.DocumentResponse) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Employee", "Category", "File", "Expiry", "Status", "Days"})
	for _, d := range items {
		tw.AppendRow(table.Row{d.ID, d.EmployeeID, d.Category, d.FileName, d.ExpiryDate, d.Status, d.DaysRemaining})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "Total", len(items)})
	tw.Render()
}

func renderWorkflow(req workflow.RequestResponse) {
	head := table.NewWriter()
	head.SetOutputMirror(os.Stdout)
	head.AppendRows([]table.Row{
		{"ID", req.ID},
		{"Type", req.Type},
		{"Requester", req.RequesterID},
		{"Reason", req.Payload.Reason},
		{"Status", req.Status},
		{"Next step", req.NextStep},
		{"Version", req.Version},
	})
	if req.Payload.Days != nil {
		head.AppendRow(table.Row{"Days", *req.Payload.Days})
	}
	head.Render()

	log := table.NewWriter()
	log.SetOutputMirror(os.Stdout)
	log.AppendHeader(table.Row{"Date", "Step", "By", "Decision", "Comment"})
	for _, a := range req.Approvals {
		by, decision := "", "comment"
		if a.ApproverID != nil {
			by = *a.ApproverID
		}
		if a.Decision != nil {
			decision = string(*a.Decision)
		}
		log.AppendRow(table.Row{a.Date.Format(time.RFC3339), a.Step, by, decision, a.Comment})
	}
	log.Render()

	if len(req.Attachments) > 0 {
		att := table.NewWriter()
		att.SetOutputMirror(os.Stdout)
		att.AppendHeader(table.Row{"Attachment", "Type", "Size", "Uploaded"})
		for _, a := range req.Attachments {
			att.AppendRow(table.Row{a.FileName, a.FileType, a.FileSize, a.UploadedAt.Format(time.RFC3339)})
		}
		att.Render()
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
