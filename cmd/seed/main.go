package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"slices"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/letmevibethatforyou/pagedsearch/internal/ddb"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

type Vehicle struct {
	Make  string `json:"make" dynamodbav:"make"`
	Model string `json:"model" dynamodbav:"model"`
	Year  int    `json:"year" dynamodbav:"year"`
	Color string `json:"color" dynamodbav:"color"`
}

var (
	makes = map[string][]string{
		"Toyota":    {"Camry", "Corolla", "Prius", "RAV4", "Highlander", "Tacoma", "4Runner"},
		"Honda":     {"Civic", "Accord", "CR-V", "Pilot", "Fit", "HR-V", "Ridgeline"},
		"Ford":      {"F-150", "Mustang", "Explorer", "Escape", "Focus", "Fusion", "Bronco"},
		"BMW":       {"3 Series", "5 Series", "X3", "X5", "i3", "i8", "Z4"},
		"Mercedes":  {"C-Class", "E-Class", "S-Class", "GLC", "GLE", "A-Class", "CLA"},
		"Audi":      {"A3", "A4", "A6", "Q3", "Q5", "Q7", "TT"},
		"Chevrolet": {"Silverado", "Equinox", "Malibu", "Tahoe", "Suburban", "Camaro", "Corvette"},
		"Nissan":    {"Altima", "Sentra", "Rogue", "Pathfinder", "Frontier", "Titan", "370Z"},
	}

	colors = []string{
		"Red", "Blue", "Black", "White", "Silver", "Gray", "Green", "Yellow", "Orange", "Purple",
	}

	// sorted so a seeded generator is reproducible
	makeKeys = sortedKeys(makes)
)

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func randomVehicle(r *rand.Rand) Vehicle {
	selectedMake := makeKeys[r.IntN(len(makeKeys))]
	models := makes[selectedMake]

	return Vehicle{
		Make:  selectedMake,
		Model: models[r.IntN(len(models))],
		Year:  r.IntN(10) + 2015, // 2015-2024
		Color: colors[r.IntN(len(colors))],
	}
}

// seed writes count random vehicles into table under indexName.
func seed(ctx context.Context, client ddb.PutAPI, r *rand.Rand, table, indexName string, count int) error {
	for i := 0; i < count; i++ {
		vehicle := randomVehicle(r)
		id := ksuid.New().String()

		if err := ddb.PutDocument(ctx, client, table, indexName, id, vehicle); err != nil {
			return fmt.Errorf("failed to insert vehicle %d: %w", i+1, err)
		}

		slog.InfoContext(ctx, "Successfully inserted vehicle",
			"id", id,
			"make", vehicle.Make,
			"model", vehicle.Model,
			"year", vehicle.Year,
			"color", vehicle.Color,
		)
	}
	return nil
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	tableName := c.String("table-name")
	indexName := c.String("index")
	count := c.Int("count")

	slog.InfoContext(ctx, "Starting vehicle seeder",
		"table", tableName,
		"index", indexName,
		"count", count,
	)

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	if c.IsSet("seed") {
		r = rand.New(rand.NewPCG(c.Uint64("seed"), 0))
	}

	if err := seed(ctx, dynamodb.NewFromConfig(cfg), r, tableName, indexName, count); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Successfully generated and inserted all vehicles", "count", count)
	return nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Insert random vehicle documents into DynamoDB for the dynamodb search backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "table-name",
				Aliases:  []string{"t"},
				Usage:    "DynamoDB table name",
				EnvVars:  []string{"TABLE_NAME"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Index name stored in the sort key",
				Value:   "cars",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Number of vehicles to generate",
				Value:   1,
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "Random seed for reproducible data",
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
