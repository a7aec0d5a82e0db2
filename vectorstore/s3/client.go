package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewStoreFromConfig builds a store from the ambient AWS configuration
// (environment, shared config files, instance metadata).
func NewStoreFromConfig(ctx context.Context, bucket, rootPrefix string, optFns ...func(o *StoreOptions)) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(awss3.NewFromConfig(cfg), bucket, rootPrefix, optFns...), nil
}

// NewCatalogFromConfig builds a catalog from the ambient AWS configuration.
func NewCatalogFromConfig(ctx context.Context, tableName string) (*Catalog, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(dynamodb.NewFromConfig(cfg), tableName), nil
}
