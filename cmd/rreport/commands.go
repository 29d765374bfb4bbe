package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/rreport/internal/cache"
	"github.com/dharsanguruparan/rreport/internal/config"
	"github.com/dharsanguruparan/rreport/internal/datasource"
	"github.com/dharsanguruparan/rreport/internal/dbcheck"
	"github.com/dharsanguruparan/rreport/internal/descriptor"
	"github.com/dharsanguruparan/rreport/internal/enum"
	"github.com/dharsanguruparan/rreport/internal/executor"
	"github.com/dharsanguruparan/rreport/internal/logger"
	pdfutil "github.com/dharsanguruparan/rreport/internal/pdf"
	"github.com/dharsanguruparan/rreport/internal/report"
	"github.com/dharsanguruparan/rreport/internal/schema"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configFile string
	logLevel   string
	cfg        *config.Config
	log        logger.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "rreport",
		Short: "Build and run Rebelo Reports descriptors",
		Long: `rreport turns report descriptor files into the engine's XML document or REST payload,
runs them through the engine CLI or API, and manages the resource cache.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}
			a.cfg = cfg
			a.log = logger.New(cfg.LogLevel, cfg.Env)
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Config file (default: ./rreport.yaml or ~/.rreport/rreport.yaml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level")
	cmd.AddCommand(
		a.newXMLCmd(),
		a.newPayloadCmd(),
		a.newSchemaCmd(),
		a.newCacheCmd(),
		a.newExecCmd(),
		a.newProbeCmd(),
	)
	return cmd
}

func (a *app) cache() *cache.Cache {
	return cache.FromConfig(a.cfg, a.log)
}

func (a *app) loadReport(path string) (*report.Report, error) {
	var loader *descriptor.Loader
	if a.cfg.CacheResources {
		loader = descriptor.NewLoader(a.cache())
	} else {
		loader = descriptor.NewLoader(nil)
	}
	return loader.Load(path)
}

func (a *app) newXMLCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "xml <descriptor>",
		Short: "Print the schema-validated XML document for a descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.loadReport(args[0])
			if err != nil {
				return err
			}
			if output != "" {
				if err := r.SerializeToFile(output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
				return nil
			}
			out, err := r.SerializeToString()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the document to this file instead of stdout")
	return cmd
}

func (a *app) newPayloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payload <descriptor>",
		Short: "Print the REST request payload for a descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.loadReport(args[0])
			if err != nil {
				return err
			}
			payload, err := r.Request()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}
}

func (a *app) newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: fmt.Sprintf("Print the embedded XSD (version %s)", schema.Version),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(schema.XSD())
			return err
		},
	}
}

func (a *app) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the resource cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "remove <path>...",
			Short: "Drop cached payloads for the given resource files",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c := a.cache()
				for _, p := range args {
					if err := c.Remove(p); err != nil {
						return err
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every cached payload",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.cache().Clear()
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show the cache directory and artifact count",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c := a.cache()
				stats, err := c.GetStats()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "dir: %s\nartifacts: %d\n", c.Dir(), stats.Artifacts)
				return nil
			},
		},
	)
	return cmd
}

func (a *app) newExecCmd() *cobra.Command {
	var useAPI bool
	var showText bool
	cmd := &cobra.Command{
		Use:   "exec <descriptor>",
		Short: "Render a descriptor through the engine CLI or REST API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.loadReport(args[0])
			if err != nil {
				return err
			}
			var ex executor.Executor
			if useAPI {
				ex, err = executor.NewAPI(a.cfg, a.log)
			} else {
				ex, err = executor.NewCLI(a.cfg, a.log)
			}
			if err != nil {
				return err
			}
			res, err := ex.Execute(cmd.Context(), r)
			if res != nil {
				printResult(cmd, res)
			}
			if err != nil {
				return err
			}
			if showText && r.Format() == enum.FormatPDF && len(res.Report) > 0 {
				text, err := pdfutil.ExtractText(res.Report)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useAPI, "api", false, "Use the REST endpoint instead of the local engine")
	cmd.Flags().BoolVar(&showText, "text", false, "Print the text of a rendered PDF")
	return cmd
}

func printResult(cmd *cobra.Command, res *executor.Result) {
	out := cmd.OutOrStdout()
	if res.Status != 0 {
		fmt.Fprintf(out, "status: %d\n", res.Status)
	} else {
		fmt.Fprintf(out, "exit code: %d\n", res.ExitCode)
	}
	fmt.Fprintf(out, "duration: %s\n", res.Duration)
	if len(res.Report) > 0 {
		fmt.Fprintf(out, "report bytes: %d\n", len(res.Report))
		if pages, err := pdfutil.PageCount(res.Report); err == nil {
			fmt.Fprintf(out, "pages: %d\n", pages)
		}
	}
	if len(res.Messages) > 0 {
		fmt.Fprintf(out, "messages:\n  %s\n", strings.Join(res.Messages, "\n  "))
	}
}

func (a *app) newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <descriptor>",
		Short: "Check that a descriptor's database datasource is reachable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.loadReport(args[0])
			if err != nil {
				return err
			}
			db, ok := r.Datasource().(*datasource.Database)
			if !ok {
				return errors.New("descriptor has no database datasource")
			}
			info, err := dbcheck.Check(cmd.Context(), db, a.log)
			if err != nil {
				return err
			}
			mode := info.SSLMode
			if info.SSLModeDefaulted {
				mode += " (default)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database: %s\nversion: %s\nlatency: %s\nsslmode: %s\n", info.Database, info.Version, info.Latency, mode)
			return nil
		},
	}
}
