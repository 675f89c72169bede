package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/letmevibethatforyou/pagedsearch"
	"github.com/letmevibethatforyou/pagedsearch/algolia"
	"github.com/letmevibethatforyou/pagedsearch/inmemory"
	"github.com/letmevibethatforyou/pagedsearch/internal/ddb"
	"github.com/letmevibethatforyou/pagedsearch/meili"
	"github.com/urfave/cli/v2"
)

const (
	defaultLimit   = pagedsearch.DefaultLimit
	defaultTimeout = 5 * time.Second

	backendAlgolia     = "algolia"
	backendMeilisearch = "meilisearch"
	backendDynamoDB    = "dynamodb"
)

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "query",
		Usage: "Run one search query and print the result page as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Search backend: algolia, meilisearch or dynamodb",
				EnvVars: []string{"SEARCH_BACKEND"},
				Value:   backendAlgolia,
			},
			&cli.StringFlag{
				Name:     "index",
				Aliases:  []string{"i"},
				Usage:    "Index name",
				EnvVars:  []string{"ALGOLIA_INDEX"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "algolia-secret-arn",
				Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
				EnvVars: []string{"ALGOLIA_SECRET_ARN"},
			},
			&cli.StringFlag{
				Name:    "meili-host",
				Usage:   "Meilisearch server URL",
				EnvVars: []string{"MEILI_HOST"},
				Value:   "http://localhost:7700",
			},
			&cli.StringFlag{
				Name:    "meili-api-key",
				Usage:   "Meilisearch API key",
				EnvVars: []string{"MEILI_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "table",
				Usage:   "DynamoDB table holding {pk, sk, object} items for the dynamodb backend",
				EnvVars: []string{"TABLE_NAME"},
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Query string to search for; positional arg is a fallback",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of results to return",
				Value:   defaultLimit,
			},
			&cli.IntFlag{
				Name:    "offset",
				Aliases: []string{"o"},
				Usage:   "Number of results to skip before returning hits",
				Value:   0,
			},
			&cli.IntFlag{
				Name:    "page",
				Aliases: []string{"p"},
				Usage:   "1-based page number; overrides offset",
			},
			&cli.StringSliceFlag{
				Name:  "facet",
				Usage: "Field to count facet values for; repeatable",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for the search request",
				Value: defaultTimeout,
			},
			&cli.StringSliceFlag{
				Name:  "filter",
				Usage: "Filter in field=value format; repeatable",
			},
		},
		Action: func(c *cli.Context) error {
			return runAction(c, out)
		},
	}
}

func runAction(c *cli.Context, out io.Writer) error {
	ctx := c.Context

	query := strings.TrimSpace(c.String("query"))
	if query == "" && c.NArg() > 0 {
		query = strings.TrimSpace(c.Args().First())
	}

	limit := c.Int("limit")
	if limit <= 0 {
		slog.WarnContext(ctx, "limit must be positive; falling back to default", "limit", limit, "default", defaultLimit)
		limit = defaultLimit
	}

	offset := c.Int("offset")
	if offset < 0 {
		slog.WarnContext(ctx, "offset cannot be negative; resetting to 0", "offset", offset)
		offset = 0
	}

	timeout := c.Duration("timeout")
	if timeout <= 0 {
		slog.WarnContext(ctx, "timeout must be positive; using default", "timeout", timeout, "default", defaultTimeout)
		timeout = defaultTimeout
	}

	opts, err := buildSearchOptions(limit, offset, c.Int("page"), c.StringSlice("facet"), c.StringSlice("filter"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backend := strings.ToLower(strings.TrimSpace(c.String("backend")))
	indexName := strings.TrimSpace(c.String("index"))

	searcher, err := newSearcher(ctx, c, backend, indexName)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "executing query",
		"backend", backend,
		"index", indexName,
		"query", query,
		"limit", limit,
		"offset", offset,
		"page", c.Int("page"),
		"option_count", len(opts),
		"timeout", timeout,
	)

	results, err := searcher.Search(ctx, query, opts...)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if err := printPage(out, results); err != nil {
		return fmt.Errorf("failed to serialize results: %w", err)
	}

	return nil
}

func newSearcher(ctx context.Context, c *cli.Context, backend, indexName string) (pagedsearch.Searcher, error) {
	switch backend {
	case backendAlgolia:
		var fetchSecrets algolia.FetchSecrets
		if secretArn := strings.TrimSpace(c.String("algolia-secret-arn")); secretArn != "" {
			slog.InfoContext(ctx, "using AWS Secrets Manager for Algolia credentials", "secret_arn", secretArn)
			cfg, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to load AWS config: %w", err)
			}
			fetchSecrets = algolia.AWSSecretsFromARN(ctx, secretsmanager.NewFromConfig(cfg), secretArn)
		} else {
			fetchSecrets = algolia.EnvSecrets()
		}
		return algolia.NewSearcher(algolia.NewClient(fetchSecrets), indexName), nil

	case backendMeilisearch:
		host := strings.TrimSpace(c.String("meili-host"))
		slog.InfoContext(ctx, "using Meilisearch", "host", host)
		return meili.New(host, c.String("meili-api-key"), indexName), nil

	case backendDynamoDB:
		table := strings.TrimSpace(c.String("table"))
		if table == "" {
			return nil, fmt.Errorf("--table is required for the %s backend", backendDynamoDB)
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		searcher := inmemory.New()
		if _, err := ddb.Fill(ctx, dynamodb.NewFromConfig(cfg), table, indexName, searcher); err != nil {
			return nil, fmt.Errorf("failed to load documents: %w", err)
		}
		return searcher, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// buildSearchOptions turns the paging, facet and filter flags into search
// options. A positive page wins over offset.
func buildSearchOptions(limit, offset, page int, facets, filters []string) ([]pagedsearch.SearchOption, error) {
	filterOptions, err := buildFilterOptions(filters)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}

	var opts []pagedsearch.SearchOption
	if page > 0 {
		opts = append(opts, pagedsearch.WithPage(page, limit))
	} else {
		opts = append(opts, pagedsearch.WithLimit(limit), pagedsearch.WithOffset(offset))
	}

	var facetFields []string
	for _, f := range facets {
		if f = strings.TrimSpace(f); f != "" {
			facetFields = append(facetFields, f)
		}
	}
	if len(facetFields) > 0 {
		opts = append(opts, pagedsearch.WithFacets(facetFields...))
	}

	return append(opts, filterOptions...), nil
}

func buildFilterOptions(raw []string) ([]pagedsearch.SearchOption, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	options := make([]pagedsearch.SearchOption, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Errorf("filter cannot be empty")
		}

		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("filter must be in field=value format: %q", item)
		}

		field := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if field == "" || value == "" {
			return nil, fmt.Errorf("filter field and value must be non-empty: %q", item)
		}

		options = append(options, pagedsearch.Eq(field, value))
	}

	return options, nil
}

func printPage(out io.Writer, res *pagedsearch.Results) error {
	if res == nil {
		_, err := fmt.Fprintln(out, "{}")
		return err
	}

	page, err := res.Page()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	_, err = fmt.Fprintln(out, string(data))
	return err
}
