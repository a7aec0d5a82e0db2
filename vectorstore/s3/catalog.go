package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/rotalabs/steergo/model"
)

// DDBClient is the DynamoDB surface the catalog needs.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Entry is one catalog record: a behavior's vector set for one model,
// pointing at its S3 location.
type Entry struct {
	SourceModel string
	Behavior    string
	Bucket      string
	Prefix      string
	Layers      []int
	UpdatedAt   time.Time
}

// Catalog tracks which vector sets exist across models in a DynamoDB table,
// so clients can discover sets without listing buckets.
//
// Table schema:
//   - Partition key: source_model (string)
//   - Sort key: behavior (string)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name steering-vectors \
//	  --attribute-definitions AttributeName=source_model,AttributeType=S AttributeName=behavior,AttributeType=S \
//	  --key-schema AttributeName=source_model,KeyType=HASH AttributeName=behavior,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Catalog struct {
	client    DDBClient
	tableName string
	now       func() time.Time
}

// NewCatalog creates a catalog over an existing DynamoDB table.
func NewCatalog(client DDBClient, tableName string) *Catalog {
	return &Catalog{client: client, tableName: tableName, now: time.Now}
}

// Register upserts a catalog entry for a stored set.
func (c *Catalog) Register(ctx context.Context, e Entry) error {
	if e.SourceModel == "" || e.Behavior == "" {
		return model.Configf("catalog entry needs a source model and behavior")
	}

	layers := make([]types.AttributeValue, len(e.Layers))
	for i, layer := range e.Layers {
		layers[i] = &types.AttributeValueMemberN{Value: strconv.Itoa(layer)}
	}

	_, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"source_model": &types.AttributeValueMemberS{Value: e.SourceModel},
			"behavior":     &types.AttributeValueMemberS{Value: e.Behavior},
			"bucket":       &types.AttributeValueMemberS{Value: e.Bucket},
			"prefix":       &types.AttributeValueMemberS{Value: e.Prefix},
			"layers":       &types.AttributeValueMemberL{Value: layers},
			"updated_at":   &types.AttributeValueMemberS{Value: c.now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("register catalog entry: %w", err)
	}
	return nil
}

// List returns all entries for a model, sorted by behavior.
func (c *Catalog) List(ctx context.Context, sourceModel string) ([]Entry, error) {
	var entries []Entry
	var startKey map[string]types.AttributeValue

	for {
		resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(c.tableName),
			KeyConditionExpression: aws.String("source_model = :m"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":m": &types.AttributeValueMemberS{Value: sourceModel},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query catalog: %w", err)
		}
		for _, item := range resp.Items {
			entry, err := decodeEntry(item)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		if resp.LastEvaluatedKey == nil {
			break
		}
		startKey = resp.LastEvaluatedKey
	}
	return entries, nil
}

// Lookup returns the entry for one model/behavior pair.
func (c *Catalog) Lookup(ctx context.Context, sourceModel, behavior string) (Entry, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("source_model = :m AND behavior = :b"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m": &types.AttributeValueMemberS{Value: sourceModel},
			":b": &types.AttributeValueMemberS{Value: behavior},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return Entry{}, fmt.Errorf("query catalog: %w", err)
	}
	if len(resp.Items) == 0 {
		return Entry{}, fmt.Errorf("%w: no catalog entry for %s/%s", model.ErrNotFound, sourceModel, behavior)
	}
	return decodeEntry(resp.Items[0])
}

// Deregister removes a catalog entry. Absent entries are a no-op.
func (c *Catalog) Deregister(ctx context.Context, sourceModel, behavior string) error {
	_, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"source_model": &types.AttributeValueMemberS{Value: sourceModel},
			"behavior":     &types.AttributeValueMemberS{Value: behavior},
		},
	})
	if err != nil {
		return fmt.Errorf("deregister catalog entry: %w", err)
	}
	return nil
}

func decodeEntry(item map[string]types.AttributeValue) (Entry, error) {
	var e Entry

	get := func(name string) (string, error) {
		attr, ok := item[name].(*types.AttributeValueMemberS)
		if !ok {
			return "", fmt.Errorf("invalid %s attribute in catalog item", name)
		}
		return attr.Value, nil
	}

	var err error
	if e.SourceModel, err = get("source_model"); err != nil {
		return Entry{}, err
	}
	if e.Behavior, err = get("behavior"); err != nil {
		return Entry{}, err
	}
	if e.Bucket, err = get("bucket"); err != nil {
		return Entry{}, err
	}
	if e.Prefix, err = get("prefix"); err != nil {
		return Entry{}, err
	}

	if attr, ok := item["layers"].(*types.AttributeValueMemberL); ok {
		for _, lv := range attr.Value {
			n, ok := lv.(*types.AttributeValueMemberN)
			if !ok {
				return Entry{}, errors.New("invalid layers attribute in catalog item")
			}
			layer, err := strconv.Atoi(n.Value)
			if err != nil {
				return Entry{}, fmt.Errorf("parse layer: %w", err)
			}
			e.Layers = append(e.Layers, layer)
		}
	}

	if ts, err := get("updated_at"); err == nil {
		e.UpdatedAt, _ = time.Parse(time.RFC3339, ts)
	}
	return e, nil
}
