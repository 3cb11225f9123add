package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/execprobe/internal/codeapi"
	"github.com/jmylchreest/execprobe/internal/config"
	"github.com/jmylchreest/execprobe/internal/runner"
	"github.com/jmylchreest/execprobe/internal/suite"
	"github.com/jmylchreest/execprobe/internal/urlutil"
	"github.com/jmylchreest/execprobe/pkg/httpclient"
)

// runProbe performs a full run: health gate, then every test case.
func (a *app) runProbe(cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	if len(args) == 1 {
		cfg.API.Key = args[0]
		a.setLogger(cmd)
	}
	if !cfg.API.HasUsableKey() {
		w := cmd.ErrOrStderr()
		fmt.Fprintln(w, "⚠️  Warning: You need to set your API key in the config file or environment, or provide it as an argument")
		fmt.Fprintf(w, "Usage: %s <your-api-key>\n", cmd.CommandPath())
		return &ExitError{Code: exitFailure}
	}

	ctx := cmd.Context()
	hc := httpclient.New(httpclient.Config{
		Timeout:             cfg.HTTP.Timeout,
		UserAgent:           cfg.HTTP.UserAgent,
		Logger:              a.logger,
		EnableDecompression: true,
		MaxResponseSize:     cfg.HTTP.MaxResponseSize.Int64(),
	})

	client, err := codeapi.NewClient(codeapi.ClientOptions{
		ExecuteURL: cfg.API.ExecuteURL,
		HealthURL:  cfg.API.HealthURL,
		APIKey:     cfg.API.Key,
		Origin:     cfg.API.Origin,
		HTTPClient: hc,
		Logger:     a.logger,
	})
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	cases, err := loadCases(ctx, cfg, urlutil.NewResourceFetcher(hc))
	if err != nil {
		return err
	}

	a.logger.Debug("resolved endpoints",
		slog.String("execute_url", client.ExecuteURL()),
		slog.String("health_url", client.HealthURL()),
		slog.Int("cases", len(cases)),
	)

	r := runner.New(runner.Options{
		API:      client,
		Printer:  runner.NewPrinter(cmd.OutOrStdout(), cfg.Output.Color),
		Logger:   a.logger,
		Cases:    cases,
		Language: cfg.API.Language,
		Timeout:  cfg.API.Timeout,
	})

	report, err := r.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return &ExitError{Code: exitInterrupted, Err: errors.New("interrupted")}
		}
		return err
	}

	if code := report.ExitCode(cfg.Run.Strict); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

func loadCases(ctx context.Context, cfg *config.Config, fetcher suite.Fetcher) ([]suite.TestCase, error) {
	if cfg.Cases.File == "" {
		return suite.DefaultCases(), nil
	}
	cases, err := suite.Load(ctx, fetcher, cfg.Cases.File)
	if err != nil {
		return nil, fmt.Errorf("loading test cases: %w", err)
	}
	return cases, nil
}
