// Package ddb loads searchable documents from a DynamoDB table whose items
// have the shape {pk, sk, object}: pk is the document ID, sk the name of
// the index the document belongs to and object the document itself.
package ddb

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/pagedsearch/inmemory"
)

// ScanAPI is the DynamoDB operation the loader needs.
type ScanAPI = dynamodb.ScanAPIClient

// Record represents a table item with extracted fields
type Record struct {
	ID        string         `dynamodbav:"pk"`
	IndexName string         `dynamodbav:"sk"`
	Object    map[string]any `dynamodbav:"object"`
}

// UnmarshalRecord converts a DynamoDB item into a Record.
func UnmarshalRecord(item map[string]types.AttributeValue) (Record, error) {
	var record Record
	err := attributevalue.UnmarshalMap(item, &record)
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

// LoadDocuments scans table and returns the documents stored under
// indexName. Items that do not decode or lack an ID or object are skipped
// with a warning.
func LoadDocuments(ctx context.Context, client ScanAPI, table, indexName string) ([]inmemory.Document, error) {
	paginator := dynamodb.NewScanPaginator(client, &dynamodb.ScanInput{
		TableName:                aws.String(table),
		FilterExpression:         aws.String("#sk = :index"),
		ExpressionAttributeNames: map[string]string{"#sk": "sk"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":index": &types.AttributeValueMemberS{Value: indexName},
		},
	})

	var docs []inmemory.Document
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "scanning table %s", table)
		}

		for _, item := range page.Items {
			record, err := UnmarshalRecord(item)
			if err != nil {
				slog.WarnContext(ctx, "Failed to unmarshal record, skipping", "error", err)
				continue
			}
			if record.IndexName != indexName {
				continue
			}
			if record.ID == "" {
				slog.WarnContext(ctx, "Missing ID (pk) in record, skipping record", "index", indexName)
				continue
			}
			if record.Object == nil {
				slog.WarnContext(ctx, "Missing Object in record, skipping record", "id", record.ID, "index", indexName)
				continue
			}
			docs = append(docs, inmemory.Document{ID: record.ID, Fields: record.Object})
		}
	}

	slog.InfoContext(ctx, "Loaded documents from DynamoDB", "table", table, "index", indexName, "count", len(docs))
	return docs, nil
}

// Fill loads the documents of indexName into searcher and returns how many
// were added.
func Fill(ctx context.Context, client ScanAPI, table, indexName string, searcher *inmemory.Searcher) (int, error) {
	docs, err := LoadDocuments(ctx, client, table, indexName)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		searcher.AddDocument(doc)
	}
	return len(docs), nil
}

// PutAPI is the DynamoDB operation used to store documents.
type PutAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// PutDocument stores object under id in the index indexName, in the item
// shape LoadDocuments reads.
func PutDocument(ctx context.Context, client PutAPI, table, indexName, id string, object any) error {
	item, err := attributevalue.MarshalMap(struct {
		ID        string `dynamodbav:"pk"`
		IndexName string `dynamodbav:"sk"`
		Object    any    `dynamodbav:"object"`
	}{ID: id, IndexName: indexName, Object: object})
	if err != nil {
		return errors.Wrapf(err, "marshaling document %s", id)
	}

	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	if err != nil {
		return errors.Wrapf(err, "putting document %s into %s", id, table)
	}
	return nil
}
