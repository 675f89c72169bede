package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/pagedsearch"
	"github.com/letmevibethatforyou/pagedsearch/algolia"
	"github.com/urfave/cli/v2"
)

// QueryEvent is the invocation payload. Page, when positive, takes
// precedence over Offset.
type QueryEvent struct {
	Query   string            `json:"query"`
	Limit   int               `json:"limit,omitempty"`
	Offset  int               `json:"offset,omitempty"`
	Page    int               `json:"page,omitempty"`
	Facets  []string          `json:"facets,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

type Handler struct {
	searcher pagedsearch.Searcher
}

func NewHandler(searcher pagedsearch.Searcher) *Handler {
	return &Handler{searcher: searcher}
}

// HandleQuery runs the event's query and returns the resolved page.
func (h *Handler) HandleQuery(ctx context.Context, e QueryEvent) (pagedsearch.Page[pagedsearch.Result], error) {
	opts, err := e.options()
	if err != nil {
		slog.WarnContext(ctx, "Rejecting query event", "error", err)
		return pagedsearch.Page[pagedsearch.Result]{}, err
	}

	slog.InfoContext(ctx, "Processing query",
		"query", e.Query,
		"limit", e.Limit,
		"offset", e.Offset,
		"page", e.Page,
		"facet_count", len(e.Facets),
		"filter_count", len(e.Filters),
	)

	results, err := h.searcher.Search(ctx, e.Query, opts...)
	if err != nil {
		slog.ErrorContext(ctx, "Search failed", "error", err)
		return pagedsearch.Page[pagedsearch.Result]{}, err
	}

	return results.Page()
}

func (e QueryEvent) options() ([]pagedsearch.SearchOption, error) {
	if e.Limit < 0 {
		return nil, errors.Wrapf(pagedsearch.ErrInvalidOption, "limit=%d", e.Limit)
	}
	if e.Offset < 0 {
		return nil, errors.Wrapf(pagedsearch.ErrInvalidOption, "offset=%d", e.Offset)
	}
	if e.Page < 0 {
		return nil, errors.Wrapf(pagedsearch.ErrInvalidOption, "page=%d", e.Page)
	}

	limit := e.Limit
	if limit == 0 {
		limit = pagedsearch.DefaultLimit
	}

	var opts []pagedsearch.SearchOption
	if e.Page > 0 {
		opts = append(opts, pagedsearch.WithPage(e.Page, limit))
	} else {
		opts = append(opts, pagedsearch.WithLimit(limit), pagedsearch.WithOffset(e.Offset))
	}
	if len(e.Facets) > 0 {
		opts = append(opts, pagedsearch.WithFacets(e.Facets...))
	}
	for field, value := range e.Filters {
		if field == "" {
			return nil, errors.Wrap(pagedsearch.ErrInvalidOption, "filter field must be non-empty")
		}
		opts = append(opts, pagedsearch.Eq(field, value))
	}
	return opts, nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	app := &cli.App{
		Name:  "search-query",
		Usage: "Serve search queries against an Algolia index from AWS Lambda",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "index",
				Usage:    "Algolia index name",
				EnvVars:  []string{"ALGOLIA_INDEX"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name for AWS Secrets Manager (takes precedence over the other credential flags)",
				EnvVars: []string{"ENV", "ENVIRONMENT"},
			},
			&cli.StringFlag{
				Name:    "algolia-secret-arn",
				Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
				EnvVars: []string{"ALGOLIA_SECRET_ARN"},
			},
			&cli.StringFlag{
				Name:    "algolia-app-id",
				Usage:   "Algolia application ID",
				EnvVars: []string{"ALGOLIA_APP_ID"},
			},
			&cli.StringFlag{
				Name:    "algolia-api-key",
				Usage:   "Algolia API key",
				EnvVars: []string{"ALGOLIA_API_KEY"},
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	indexName := c.String("index")
	env := c.String("env")
	secretArn := c.String("algolia-secret-arn")
	algoliaAppID := c.String("algolia-app-id")
	algoliaAPIKey := c.String("algolia-api-key")

	slog.InfoContext(ctx, "Starting search query function", "index", indexName, "environment", env)

	var fetchSecrets algolia.FetchSecrets
	switch {
	case env != "" || secretArn != "":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load AWS config", "error", err)
			return err
		}
		client := secretsmanager.NewFromConfig(cfg)
		if env != "" {
			slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "environment", env)
			fetchSecrets = algolia.AWSSecrets(ctx, client, env)
		} else {
			slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "secret_arn", secretArn)
			fetchSecrets = algolia.AWSSecretsFromARN(ctx, client, secretArn)
		}
	case algoliaAppID != "" && algoliaAPIKey != "":
		slog.InfoContext(ctx, "Using static credentials from flags")
		fetchSecrets = algolia.StaticSecrets(algoliaAppID, algoliaAPIKey)
	default:
		slog.InfoContext(ctx, "Using environment variables for credentials")
		fetchSecrets = algolia.EnvSecrets()
	}

	handler := NewHandler(algolia.NewSearcher(algolia.NewClient(fetchSecrets), indexName))

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		slog.InfoContext(ctx, "Running in Lambda environment")
		lambda.Start(handler.HandleQuery)
	} else {
		slog.InfoContext(ctx, "Function cannot run outside of AWS Lambda environment")
	}

	return nil
}
