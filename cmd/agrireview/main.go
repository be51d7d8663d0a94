package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/agrireview/agrireview/internal/app"
	"github.com/agrireview/agrireview/internal/config"
	"github.com/agrireview/agrireview/internal/server"
)

var (
	version   = "0.1.0"
	cfgFile   string
	outputDir string
	noEmail   bool
	verbose   bool
	listen    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "agrireview",
		Short:   "AgriReview - Your personal PhD supervisor",
		Long:    `AgriReview reviews academic documents (.docx) with a generative model, producing scores across five dimensions, an executive summary, and severity-tagged inline comments.`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (default: ~/.config/agrireview/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	reviewCmd := &cobra.Command{
		Use:   "review <path>",
		Short: "Review a .docx file, or every .docx under a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runReview,
	}
	reviewCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for report files (default: reports)")
	reviewCmd.Flags().BoolVar(&noEmail, "no-email", false, "Skip email delivery even if configured")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP upload surface",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default: :8080)")

	rootCmd.AddCommand(reviewCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Verbose = verbose
	return cfg, nil
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override config with CLI flags
	if outputDir != "" {
		cfg.Reports.OutputDir = outputDir
	}
	if noEmail {
		cfg.Email.Enabled = false
	}

	runner, err := app.NewRunner(cfg)
	if err != nil {
		return err
	}
	return runner.Run(cmd.Context(), args[0])
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Server.ListenAddr = listen
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.New(os.Stdout, "[AgriReview] ", log.LstdFlags)
	runner, err := app.NewRunner(cfg, app.WithLogger(logger))
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, runner, logger)
	return srv.ListenAndServe(cmd.Context())
}
