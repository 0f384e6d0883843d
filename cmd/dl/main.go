package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"docketline/internal/app"
	"docketline/internal/config"
	"docketline/internal/db"
	"docketline/internal/domain"
	"docketline/internal/engine"
	"docketline/internal/migrate"
	"docketline/internal/repo"
	"docketline/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "dl",
	Short: "Docketline CLI",
	Long: `Docketline computes and tracks court deadlines.
- Workspace: a .docketline directory holding the SQLite database; rule
  configs live in the DB and can be imported from docketline.yml.
- Case: a court matter with a jurisdiction and court type; deadlines
  belong to a case.
- Triggers: procedural events (complaint served, trial order entered)
  classified from document types; firing one expands rule templates
  into dated, dependent deadlines.
- Dependencies: deadlines chained to a parent date; when the parent
  moves, pending dependents recalculate and every change is kept in
  the deadline's history.
- Event log: diary of changes, view with 'dl log tail'.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
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
	viper.SetEnvPrefix("DOCKETLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier")
	rootCmd.PersistentFlags().String("case", "", "case id (defaults to the only case in the workspace)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose logging")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
	_ = viper.BindPFlag("case", rootCmd.PersistentFlags().Lookup("case"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func registerCommands() {
	rootCmd.AddCommand(caseCmd())
	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(triggerCmd())
	rootCmd.AddCommand(deadlineCmd())
	rootCmd.AddCommand(chainCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func caseCmd() *cobra.Command {
	c := &cobra.Command{Use: "case", Short: "Manage cases"}
	c.AddCommand(caseCreateCmd())
	c.AddCommand(caseListCmd())
	c.AddCommand(caseShowCmd())
	c.AddCommand(caseCloseCmd())
	c.AddCommand(caseDeleteCmd())
	return c
}

func caseCreateCmd() *cobra.Command {
	var title, number, jurisdiction, courtType string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a case",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, err := e.InitCase(ctx, engine.CaseCreateOptions{
					Title:        title,
					CaseNumber:   number,
					Jurisdiction: jurisdiction,
					CourtType:    courtType,
					ActorID:      viper.GetString("actor-id"),
				})
				if err != nil {
					return err
				}
				return printJSONOrTable(c)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "case title")
	cmd.Flags().StringVar(&number, "number", "", "court case number")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "florida_state", "jurisdiction (must have a court calendar)")
	cmd.Flags().StringVar(&courtType, "court-type", "civil", "court type")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func caseListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				items, err := r.ListCases(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Number", "Jurisdiction", "Court", "Status"})
				for _, c := range items {
					tw.AppendRow(table.Row{c.ID, c.Title, c.CaseNumber, c.Jurisdiction, c.CourtType, c.Status})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func caseShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a case",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, err := resolveCase(ctx, e.Repo)
				if err != nil {
					return err
				}
				return printJSONOrTable(c)
			})
		},
	}
	return cmd
}

func caseCloseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a case",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				c, err := resolveCase(ctx, r)
				if err != nil {
					return err
				}
				return r.UpdateCaseStatus(ctx, c.ID, "closed")
			})
		},
	}
	return cmd
}

func caseDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a case and its deadlines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				return r.DeleteCase(ctx, args[0])
			})
		},
	}
	return cmd
}

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <document type>",
		Short: "Preview trigger classification for a document type",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docType := strings.Join(args, " ")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, err := resolveCase(ctx, e.Repo)
				if err != nil {
					return err
				}
				mr := e.Catalog.MatchDocument(docType, c.Jurisdiction, c.CourtType)
				if viper.GetBool("json") {
					return printJSON(mr)
				}
				if !mr.Matches {
					fmt.Printf("No trigger pattern matches %q\n", docType)
					return nil
				}
				fmt.Printf("Trigger: %s (pattern %q), %d deadline(s) would be generated\n",
					mr.TriggerType, mr.MatchedPattern, mr.ExpectedDeadlines)
				return nil
			})
		},
	}
	return cmd
}

func triggerCmd() *cobra.Command {
	trig := &cobra.Command{Use: "trigger", Short: "Fire deadline triggers"}
	trig.AddCommand(triggerFireCmd())
	return trig
}

func triggerFireCmd() *cobra.Command {
	var docType, triggerType, date, service string
	cmd := &cobra.Command{
		Use:   "fire",
		Short: "Fire a trigger and generate its deadline chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, err := resolveCase(ctx, e.Repo)
				if err != nil {
					return err
				}
				res, err := e.FireTrigger(ctx, engine.TriggerOptions{
					CaseID:        c.ID,
					DocumentType:  docType,
					TriggerType:   triggerType,
					TriggerDate:   date,
					ServiceMethod: service,
					ActorID:       viper.GetString("actor-id"),
				})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(res)
				}
				if !res.Matched {
					fmt.Println(res.Reason)
					return nil
				}
				fmt.Printf("Trigger %s fired on %s: %d chain(s), %d deadline(s)\n",
					res.TriggerType, date, len(res.Chains), len(res.Deadlines))
				renderDeadlineTable(res.Deadlines)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&docType, "document", "", "document type to classify")
	cmd.Flags().StringVar(&triggerType, "type", "", "explicit trigger type (skips classification)")
	cmd.Flags().StringVar(&date, "date", "", "trigger date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&service, "service", "electronic", "service method (electronic, personal, mail)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func deadlineCmd() *cobra.Command {
	d := &cobra.Command{Use: "deadline", Short: "Manage deadlines"}
	d.AddCommand(deadlineAddCmd())
	d.AddCommand(deadlineListCmd())
	d.AddCommand(deadlineShowCmd())
	d.AddCommand(deadlineUpdateCmd())
	d.AddCommand(deadlineCompleteCmd())
	d.AddCommand(deadlineCancelCmd())
	d.AddCommand(deadlineDeleteCmd())
	d.AddCommand(deadlineHistoryCmd())
	d.AddCommand(deadlineDependCmd())
	return d
}

func deadlineAddCmd() *cobra.Command {
	var opts engine.DeadlineCreateOptions
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a manual deadline",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ActorID = viper.GetString("actor-id")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, err := resolveCase(ctx, e.Repo)
				if err != nil {
					return err
				}
				opts.CaseID = c.ID
				d, err := e.AddManualDeadline(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(d)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Title, "title", "", "deadline title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description")
	cmd.Flags().StringVar(&opts.Date, "date", "", "deadline date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Time, "time", "", "deadline time (HH:MM)")
	cmd.Flags().StringVar(&opts.DeadlineType, "type", "", "deadline type")
	cmd.Flags().StringVar(&opts.Priority, "priority", "standard", "priority")
	cmd.Flags().StringVar(&opts.PartyRole, "party", "", "responsible party")
	cmd.Flags().StringVar(&opts.ActionRequired, "action", "", "action required")
	cmd.Flags().StringVar(&opts.ApplicableRule, "rule", "", "rule citation")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func deadlineListCmd() *cobra.Command {
	var f repo.DeadlineFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deadlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, err := resolveCase(ctx, e.Repo)
				if err != nil {
					return err
				}
				f.CaseID = c.ID
				items, err := e.Repo.ListDeadlines(ctx, f)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				renderDeadlineTable(items)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "status filter")
	cmd.Flags().StringVar(&f.Priority, "priority", "", "priority filter")
	cmd.Flags().StringVar(&f.From, "from", "", "earliest date (inclusive)")
	cmd.Flags().StringVar(&f.To, "to", "", "latest date (inclusive)")
	return cmd
}

func deadlineShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a deadline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				d, err := e.Repo.GetDeadline(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(d)
			})
		},
	}
	return cmd
}

func deadlineUpdateCmd() *cobra.Command {
	var status, date, timeOfDay, reason string
	var autoRecalc bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a deadline (date edits recalculate dependents)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := engine.DeadlineUpdateOptions{
				ID:      args[0],
				Status:  status,
				Reason:  reason,
				ActorID: viper.GetString("actor-id"),
			}
			if cmd.Flags().Changed("date") {
				opts.SetDate = &date
			}
			if cmd.Flags().Changed("time") {
				opts.SetTime = &timeOfDay
			}
			if cmd.Flags().Changed("auto-recalculate") {
				opts.SetAutoRecalc = &autoRecalc
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				d, err := e.UpdateDeadline(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(d)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "new status (completed, cancelled)")
	cmd.Flags().StringVar(&date, "date", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&timeOfDay, "time", "", "new time (HH:MM)")
	cmd.Flags().BoolVar(&autoRecalc, "auto-recalculate", true, "recalculate when the parent moves")
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded in history")
	return cmd
}

func deadlineCompleteCmd() *cobra.Command {
	return deadlineStatusCmd("complete", "Complete a deadline", "completed")
}

func deadlineCancelCmd() *cobra.Command {
	return deadlineStatusCmd("cancel", "Cancel a deadline", "cancelled")
}

func deadlineStatusCmd(verb, short, status string) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   verb + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				d, err := e.UpdateDeadline(ctx, engine.DeadlineUpdateOptions{
					ID:      args[0],
					Status:  status,
					Reason:  reason,
					ActorID: viper.GetString("actor-id"),
				})
				if err != nil {
					return err
				}
				return printJSONOrTable(d)
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded in history")
	return cmd
}

func deadlineDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a deadline (dependents follow the configured policy)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return e.DeleteDeadline(ctx, args[0], viper.GetString("actor-id"))
			})
		},
	}
	return cmd
}

func deadlineHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Show a deadline's change history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.Repo.ListHistory(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"When", "Field", "Old", "New", "Type", "Reason"})
				for _, h := range items {
					tw.AppendRow(table.Row{h.CreatedAt, h.FieldName, h.OldValue, h.NewValue, h.ChangeType, h.Reason})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func deadlineDependCmd() *cobra.Command {
	var opts engine.DependencyOptions
	cmd := &cobra.Command{
		Use:   "depend <id>",
		Short: "Link a deadline to a parent deadline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.DeadlineID = args[0]
			opts.ActorID = viper.GetString("actor-id")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				dep, err := e.AddDependency(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(dep)
			})
		},
	}
	cmd.Flags().StringVar(&opts.DependsOnID, "on", "", "parent deadline id")
	cmd.Flags().IntVar(&opts.OffsetDays, "offset", 0, "offset in days (negative = before the parent)")
	cmd.Flags().StringVar(&opts.OffsetDirection, "direction", "", "before or after (derived from offset sign when empty)")
	cmd.Flags().BoolVar(&opts.AddServiceDays, "add-service-days", false, "add service-method days")
	cmd.Flags().BoolVar(&opts.AutoRecalculate, "auto-recalculate", true, "recalculate when the parent moves")
	_ = cmd.MarkFlagRequired("on")
	return cmd
}

func chainCmd() *cobra.Command {
	c := &cobra.Command{Use: "chain", Short: "Inspect deadline chains"}
	c.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List chains generated for a case",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				cs, err := resolveCase(ctx, e.Repo)
				if err != nil {
					return err
				}
				items, err := e.Repo.ListChains(ctx, cs.ID)
				if err != nil {
					return err
				}
				return printJSONOrTable(items)
			})
		},
	})
	return c
}

func rulesCmd() *cobra.Command {
	r := &cobra.Command{Use: "rules", Short: "Manage the rule config"}
	r.AddCommand(rulesListCmd())
	r.AddCommand(rulesShowConfigCmd())
	r.AddCommand(rulesImportCmd())
	r.AddCommand(rulesExportDefaultCmd())
	return r
}

func rulesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded rule templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				templates := e.Catalog.Templates()
				if viper.GetBool("json") {
					return printJSON(templates)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Jurisdiction", "Court", "Trigger", "Deadlines"})
				for _, t := range templates {
					tw.AppendRow(table.Row{t.ID, t.Name, t.Jurisdiction, t.CourtType, t.TriggerType, len(t.Deadlines)})
				}
				tw.Render()
				if n := e.Catalog.Skipped(); n > 0 {
					fmt.Printf("%d malformed template(s) skipped at load; see logs\n", n)
				}
				return nil
			})
		},
	}
	return cmd
}

func rulesShowConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-config",
		Short: "Show the active rule config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return printJSONOrTable(e.Config)
			})
		},
	}
	return cmd
}

func rulesImportCmd() *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a rule config YAML into the DB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFile(filePath)
			if err != nil {
				return err
			}
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				if err := r.UpsertRuleConfig(ctx, cfg); err != nil {
					return err
				}
				fmt.Printf("Imported %d template(s), %d calendar(s)\n", len(cfg.Templates), len(cfg.Calendars))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "path to YAML config")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func rulesExportDefaultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-default",
		Short: "Print the built-in rule config YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(config.GenerateDefault())
			return nil
		},
	}
	return cmd
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show case deadline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, err := resolveCase(ctx, e.Repo)
				if err != nil {
					return err
				}
				counts, err := e.Repo.CountDeadlinesByStatus(ctx, c.ID)
				if err != nil {
					return err
				}
				chains, err := e.Repo.ListChains(ctx, c.ID)
				if err != nil {
					return err
				}
				out := map[string]any{
					"case_id":         c.ID,
					"status":          c.Status,
					"deadline_counts": counts,
					"chains":          len(chains),
				}
				if viper.GetBool("json") {
					return printJSON(out)
				}
				fmt.Printf("Case: %s (%s)\n", c.Title, c.Status)
				fmt.Printf("Chains: %d\n", len(chains))
				fmt.Println("Deadlines:")
				for status, n := range counts {
					fmt.Printf("  %s: %d\n", status, n)
				}
				return nil
			})
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	l := &cobra.Command{Use: "log", Short: "Event log"}
	l.AddCommand(logTailCmd())
	return l
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityKind, entityID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				caseID := viper.GetString("case")
				events, err := e.Repo.LatestEvents(ctx, n, caseID, evtType, entityKind, entityID)
				if err != nil {
					return err
				}
				return printJSONOrTable(events)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "entity id")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			r := repo.Repo{DB: conn}
			cfg, err := app.ResolveConfig(cmd.Context(), workspace, r)
			if err != nil {
				return err
			}
			log, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer log.Sync()
			e, err := engine.New(conn, cfg, log)
			if err != nil {
				return err
			}
			handler, err := server.New(server.Config{Engine: e, BasePath: basePath})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Docketline API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

// --- helpers ---

func buildLogger() *zap.Logger {
	if viper.GetBool("verbose") {
		log, err := zap.NewDevelopment()
		if err == nil {
			return log
		}
	}
	return zap.NewNop()
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	r := repo.Repo{DB: conn}
	cfg, err := app.ResolveConfig(ctx, workspace, r)
	if err != nil {
		return err
	}
	e, err := engine.New(conn, cfg, buildLogger())
	if err != nil {
		return err
	}
	return fn(ctx, e)
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, repo.Repo{DB: conn})
}

func resolveCase(ctx context.Context, r repo.Repo) (domain.Case, error) {
	if id := strings.TrimSpace(viper.GetString("case")); id != "" {
		return r.GetCase(ctx, id)
	}
	return r.SingleCase(ctx)
}

func renderDeadlineTable(items []domain.Deadline) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Date", "Title", "Priority", "Status", "Party"})
	for _, d := range items {
		tw.AppendRow(table.Row{d.ID, d.DeadlineDate, d.Title, d.Priority, d.Status, d.PartyRole})
	}
	tw.Render()
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
