// Command infinity resolves a query definition against a URL or a local
// payload and prints the canonical result, useful for developing and
// debugging query definitions outside the visualization host.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/grafana/infinity/pkg/engine"
	"github.com/grafana/infinity/pkg/fetcher"
	"github.com/grafana/infinity/pkg/query"
	"github.com/grafana/infinity/pkg/variables"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	app := kingpin.New("infinity", "Resolve infinity query definitions against raw data.")

	queryFile := app.Flag("query-file", "Path to a query definition (YAML or JSON).").Short('q').Required().String()
	inputFile := app.Flag("input", "Read the raw payload from this file instead of fetching; use - for stdin.").Short('i').String()
	varFlags := app.Flag("var", "Template variable as name=value; repeatable, repeated names build multi-value variables.").Strings()
	variableExpr := app.Flag("variable-query", "Evaluate the query file as a variable query instead of a data query.").Bool()
	window := app.Flag("window", "Request window ending now, used for series generation and fallback timestamps.").Default("1h").Duration()
	logLevel := app.Flag("log-level", "One of debug, info, warn, error.").Default("info").String()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := newLogger(*logLevel)

	q, err := loadQuery(*queryFile)
	if err != nil {
		exitWithErr(err)
	}
	vars := parseVars(*varFlags)

	opts := []engine.Option{}
	if q.Source == query.SourceURL {
		client, err := fetcher.NewClient(fetcher.Settings{}, logger)
		if err != nil {
			exitWithErr(err)
		}
		opts = append(opts, engine.WithFetcher(client))
	}
	e := engine.New(logger, opts...)

	if *inputFile != "" {
		raw, err := readInput(*inputFile)
		if err != nil {
			exitWithErr(err)
		}
		q.Source = query.SourceInline
		q.Data = raw
	}

	ctx := context.Background()
	now := time.Now()
	timeRange := engine.TimeRange{From: now.Add(-*window), To: now}

	if *variableExpr {
		results, err := e.ResolveVariables(ctx, engine.VariableQuery{Query: q.Expression, QueryType: variables.QueryTypeLegacy}, vars)
		if err != nil {
			exitWithErr(err)
		}
		printJSON(results)
		return
	}

	result, err := e.ResolveQuery(ctx, q, vars, timeRange)
	if err != nil {
		exitWithErr(err)
	}
	for _, notice := range result.Notices {
		level.Warn(logger).Log("msg", "upstream notice", "severity", notice.Severity, "text", notice.Text)
	}
	printJSON(result)
}

func newLogger(logLevel string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	var filter level.Option
	switch logLevel {
	case "debug":
		filter = level.AllowDebug()
	case "warn":
		filter = level.AllowWarn()
	case "error":
		filter = level.AllowError()
	default:
		filter = level.AllowInfo()
	}
	return level.NewFilter(logger, filter)
}

// loadQuery decodes a query definition file; YAML handles the JSON subset
// too, so both formats work.
func loadQuery(path string) (query.Query, error) {
	var q query.Query
	raw, err := os.ReadFile(path)
	if err != nil {
		return q, fmt.Errorf("reading query file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &q); err != nil {
		return q, fmt.Errorf("decoding query file: %w", err)
	}
	return q, nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		return string(raw), err
	}
	raw, err := os.ReadFile(path)
	return string(raw), err
}

func parseVars(pairs []string) query.ScopedVars {
	if len(pairs) == 0 {
		return nil
	}
	vars := query.ScopedVars{}
	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		vars[name] = append(vars[name], value)
	}
	return vars
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitWithErr(err)
	}
	fmt.Println(string(out))
}

func exitWithErr(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
	os.Exit(1)
}
