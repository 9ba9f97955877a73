package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/vecfile/blobstore"
)

// ManifestName is the well-known blob name the commit store intercepts.
// It matches the manifest name published by vecfile's remote sync.
const ManifestName = "manifest.json"

// ErrConcurrentModification is returned when another writer committed a
// manifest version first.
var ErrConcurrentModification = errors.New("concurrent manifest modification detected")

// DDBClient is the subset of the DynamoDB API the commit store depends on.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DDBCommitStore implements blobstore.BlobStore backed by S3, with DynamoDB
// providing the compare-and-swap semantics S3 lacks for manifest updates.
//
// Manifest bytes are written to S3 under a versioned object name; a
// DynamoDB conditional write then advances the current-version pointer.
// Readers resolve the pointer before fetching, so they always see a fully
// uploaded manifest, even with concurrent publishers.
//
// Table schema:
//   - Partition key: base_uri (string) - the S3 bucket/prefix
//   - Sort key: version (number) - monotonically increasing
type DDBCommitStore struct {
	s3Store   *Store
	ddbClient DDBClient
	tableName string
	baseURI   string
}

// NewDDBCommitStore creates a new S3+DynamoDB commit store. baseURI is the
// "s3://bucket/prefix" identity used as the DynamoDB partition key.
func NewDDBCommitStore(s3Store *Store, ddbClient DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		s3Store:   s3Store,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

// Open opens a blob for reading. For the manifest, the latest committed
// version is resolved through DynamoDB first.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != ManifestName {
		return s.s3Store.Open(ctx, name)
	}

	version, objectName, err := s.latestVersion(ctx)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return s.s3Store.Open(ctx, objectName)
}

// Create creates a blob for streaming writes. The manifest must go through
// Put so it can be committed atomically.
func (s *DDBCommitStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if name == ManifestName {
		return nil, fmt.Errorf("manifest must be written via Put for atomic commit")
	}
	return s.s3Store.Create(ctx, name)
}

// Put writes a blob. The manifest is stored under a versioned name and
// committed via a DynamoDB conditional write.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name != ManifestName {
		return s.s3Store.Put(ctx, name, data)
	}

	current, _, err := s.latestVersion(ctx)
	if err != nil {
		return err
	}
	next := current + 1

	objectName := fmt.Sprintf("manifest-v%d.json", next)
	if err := s.s3Store.Put(ctx, objectName, data); err != nil {
		return err
	}

	return s.commitVersion(ctx, next, objectName)
}

// Delete removes a blob.
func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	return s.s3Store.Delete(ctx, name)
}

// List lists blobs with prefix.
func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.s3Store.List(ctx, prefix)
}

// latestVersion queries DynamoDB for the newest committed manifest version.
func (s *DDBCommitStore) latestVersion(ctx context.Context) (uint64, string, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":uri": &ddbtypes.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("query commit table: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in commit table")
	}
	objectAttr, ok := item["manifest_object"].(*ddbtypes.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid manifest_object attribute in commit table")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse version: %w", err)
	}

	return version, objectAttr.Value, nil
}

// commitVersion advances the pointer with a conditional put so exactly one
// writer wins each version.
func (s *DDBCommitStore) commitVersion(ctx context.Context, version uint64, objectName string) error {
	_, err := s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]ddbtypes.AttributeValue{
			"base_uri":        &ddbtypes.AttributeValueMemberS{Value: s.baseURI},
			"version":         &ddbtypes.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"manifest_object": &ddbtypes.AttributeValueMemberS{Value: objectName},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("commit manifest version: %w", err)
	}
	return nil
}
