package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ricardonunez-io/logcopilot/internal/archive"
	"github.com/ricardonunez-io/logcopilot/internal/copilot"
	"github.com/ricardonunez-io/logcopilot/internal/ingestor"
	"github.com/ricardonunez-io/logcopilot/internal/query"
	"github.com/ricardonunez-io/logcopilot/internal/server"
	"github.com/spf13/cobra"
)

var (
	noArchive bool

	ingestOpts  copilot.IngestRequest
	analyzeOpts copilot.AnalysisRequest
	pullOpts    ingestor.PullRequest
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		var arc *archive.Archive
		if !noArchive {
			arc = archive.New(a.cfg.DataDir)
		}
		return server.New(a.service, arc).ListenAndServe(cmd.Context(), a.cfg.HTTPAddr)
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE",
	Short: "Index every non-blank line of a log file (- reads stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		var content []byte
		if args[0] == "-" {
			content, err = io.ReadAll(cmd.InOrStdin())
		} else {
			content, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		req := ingestOpts
		req.Content = content
		result, err := a.service.Ingest(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarize the most recent lines of an index matching a query",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		result, err := a.service.Analyze(cmd.Context(), analyzeOpts)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Copy one window of DataDog logs into an index",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if !a.cfg.DataDog.Enabled() {
			return fmt.Errorf("DD_API_KEY and DD_APPLICATION_KEY are required")
		}

		dd := ingestor.NewDataDog(ingestor.DataDogConfig{
			APIKey:  a.cfg.DataDog.APIKey,
			AppKey:  a.cfg.DataDog.AppKey,
			Site:    a.cfg.DataDog.Site,
			MaxLogs: a.cfg.DataDog.MaxLogs,
		})
		result, err := ingestor.Pull(cmd.Context(), dd, a.service, pullOpts, time.Now())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noArchive, "no-archive", false, "do not keep raw uploads on disk")

	ingestCmd.Flags().StringVar(&ingestOpts.Category, "category", copilot.DefaultCategory, "log type, used to derive the index name")
	ingestCmd.Flags().StringVar(&ingestOpts.Description, "description", "", "free-text description of the upload")

	analyzeCmd.Flags().StringVar(&analyzeOpts.Index, "index", "", "index to query, e.g. logs-nginx")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.Filter, "query", "q", query.MatchAll, "query_string filter")
	analyzeCmd.Flags().IntVar(&analyzeOpts.Limit, "size", query.DefaultLimit, "maximum number of lines to analyze")
	analyzeCmd.Flags().StringVar(&analyzeOpts.Category, "category", copilot.DefaultCategory, "log type shown to the model")
	analyzeCmd.Flags().StringVar(&analyzeOpts.Description, "description", "", "what the user is seeing")
	_ = analyzeCmd.MarkFlagRequired("index")

	pullCmd.Flags().StringVar(&pullOpts.Category, "category", "datadog", "log type, used to derive the index name")
	pullCmd.Flags().StringVarP(&pullOpts.Query, "query", "q", "*", "DataDog log search query")
	pullCmd.Flags().StringVar(&pullOpts.Interval, "interval", ingestor.DefaultInterval, "look-back window, e.g. FIFTEEN_MINUTES, ONE_HOUR")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
