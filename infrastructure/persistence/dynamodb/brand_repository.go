// Package dynamodb implements the brand directory port on a single-table
// DynamoDB layout.
//
// Layout:
//
//	PK=USER#<userId>  SK=BRAND#<brandId>      the brand record
//	PK=USER#<userId>  SK=BRANDNAME#<name>     name-claim item pointing at the
//	                                          live brandId for that name
//
// The claim item is written with a conditional put, which is what makes
// concurrent first-time creates of the same name converge on one brandId.
// Claim and record are written in a single transaction so a claim never
// exists without its record.
package dynamodb

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tryon-backend/domain/gallery"
	apperrors "tryon-backend/pkg/errors"
	"tryon-backend/pkg/utils"
)

const (
	pkUserPrefix      = "USER#"
	skBrandPrefix     = "BRAND#"
	skBrandNamePrefix = "BRANDNAME#"
)

// brandItem is the persisted shape of a brand record.
type brandItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	UserID      string `dynamodbav:"UserID"`
	BrandID     string `dynamodbav:"BrandID"`
	BrandName   string `dynamodbav:"BrandName"`
	UploadCount int    `dynamodbav:"UploadCount"`
	Email       string `dynamodbav:"Email,omitempty"`
	Groups      string `dynamodbav:"Groups,omitempty"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

// claimItem binds a brand name to the brandId that owns it.
type claimItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	BrandID   string `dynamodbav:"BrandID"`
	CreatedAt string `dynamodbav:"CreatedAt"`
}

// DynamoDBAPI is the slice of the DynamoDB client the repository uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// BrandRepository is the DynamoDB-backed brand directory.
type BrandRepository struct {
	client       DynamoDBAPI
	table        string
	scanMaxPages int
	logger       *zap.Logger
}

// NewBrandRepository creates a repository bound to one table.
func NewBrandRepository(client DynamoDBAPI, table string, scanMaxPages int, logger *zap.Logger) *BrandRepository {
	if scanMaxPages <= 0 {
		scanMaxPages = 20
	}
	return &BrandRepository{
		client:       client,
		table:        table,
		scanMaxPages: scanMaxPages,
		logger:       logger,
	}
}

// ResolveOrCreate returns the brand registered under (userID, brandName),
// creating it when the name is unclaimed. Losing a concurrent create race is
// not an error; the loser adopts the winner's brandId.
func (r *BrandRepository) ResolveOrCreate(ctx context.Context, userID, brandName, email, groups string) (*gallery.Brand, error) {
	if brandID, err := r.lookupClaim(ctx, userID, brandName); err != nil {
		return nil, err
	} else if brandID != "" {
		return r.getBrand(ctx, userID, brandID)
	}

	brandID := uuid.New().String()
	now := utils.NowRFC3339()

	claim := claimItem{
		PK:        pkUserPrefix + userID,
		SK:        skBrandNamePrefix + brandName,
		BrandID:   brandID,
		CreatedAt: now,
	}
	claimAV, err := attributevalue.MarshalMap(claim)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to marshal brand claim").WithCause(err)
	}

	record := brandItem{
		PK:        pkUserPrefix + userID,
		SK:        skBrandPrefix + brandID,
		UserID:    userID,
		BrandID:   brandID,
		BrandName: brandName,
		Email:     email,
		Groups:    groups,
		CreatedAt: now,
		UpdatedAt: now,
	}
	recordAV, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to marshal brand record").WithCause(err)
	}

	// One transaction writes both items. Either the brand exists in full or
	// not at all; a claim can never be left pointing at a missing record.
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.table),
				Item:                claimAV,
				ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
			}},
			{Put: &types.Put{
				TableName: aws.String(r.table),
				Item:      recordAV,
			}},
		},
	})
	if err != nil {
		if isConditionalCancellation(err) {
			// Lost the race. The claim now exists; adopt its brandId.
			winnerID, lookupErr := r.lookupClaim(ctx, userID, brandName)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if winnerID == "" {
				return nil, apperrors.NewDatabaseError("resolve brand claim", err)
			}
			return r.getBrand(ctx, userID, winnerID)
		}
		return nil, apperrors.NewDatabaseError("create brand", err)
	}

	r.logger.Info("brand created",
		zap.String("userId", userID),
		zap.String("brandId", brandID),
		zap.String("brandName", brandName),
	)
	return toBrand(record), nil
}

// ListForUser returns every brand in a user's partition.
func (r *BrandRepository) ListForUser(ctx context.Context, userID string) ([]gallery.Brand, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(pkUserPrefix + userID)).
		And(expression.Key("SK").BeginsWith(skBrandPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build brand query").WithCause(err)
	}

	brands := make([]gallery.Brand, 0)
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.table),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("query brands", err)
		}
		for _, av := range out.Items {
			var item brandItem
			if err := attributevalue.UnmarshalMap(av, &item); err != nil {
				return nil, apperrors.NewInternalError("failed to unmarshal brand record").WithCause(err)
			}
			brands = append(brands, *toBrand(item))
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	sort.Slice(brands, func(i, j int) bool { return brands[i].BrandName < brands[j].BrandName })
	return brands, nil
}

// ListAll scans the whole table for brand records, bounded by scanMaxPages.
// A truncated scan is logged and returns the partial result rather than
// failing.
func (r *BrandRepository) ListAll(ctx context.Context) ([]gallery.Brand, error) {
	filter := expression.BeginsWith(expression.Name("SK"), skBrandPrefix)
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build brand scan").WithCause(err)
	}

	seen := make(map[string]struct{})
	brands := make([]gallery.Brand, 0)
	var lastKey map[string]types.AttributeValue
	for page := 0; page < r.scanMaxPages; page++ {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.table),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan brands", err)
		}
		for _, av := range out.Items {
			var item brandItem
			if err := attributevalue.UnmarshalMap(av, &item); err != nil {
				return nil, apperrors.NewInternalError("failed to unmarshal brand record").WithCause(err)
			}
			dedupeKey := item.UserID + "#" + item.BrandID
			if _, ok := seen[dedupeKey]; ok {
				continue
			}
			seen[dedupeKey] = struct{}{}
			brands = append(brands, *toBrand(item))
		}
		if out.LastEvaluatedKey == nil {
			lastKey = nil
			break
		}
		lastKey = out.LastEvaluatedKey
	}
	if lastKey != nil {
		r.logger.Warn("brand scan truncated at page limit",
			zap.Int("maxPages", r.scanMaxPages),
		)
	}

	sort.Slice(brands, func(i, j int) bool { return brands[i].BrandName < brands[j].BrandName })
	return brands, nil
}

// IncrementUploadCount bumps the brand counter and refreshes the audit
// snapshots in one atomic update. CreatedAt is backfilled for records that
// predate the field.
func (r *BrandRepository) IncrementUploadCount(ctx context.Context, userID, brandID string, delta int, email, groups string) error {
	now := utils.NowRFC3339()
	update := expression.
		Set(expression.Name("UpdatedAt"), expression.Value(now)).
		Set(expression.Name("CreatedAt"), expression.IfNotExists(expression.Name("CreatedAt"), expression.Value(now))).
		Set(expression.Name("Email"), expression.Value(email)).
		Set(expression.Name("Groups"), expression.Value(groups)).
		Add(expression.Name("UploadCount"), expression.Value(delta))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return apperrors.NewInternalError("failed to build counter update").WithCause(err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pkUserPrefix + userID},
			"SK": &types.AttributeValueMemberS{Value: skBrandPrefix + brandID},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return apperrors.NewDatabaseError("increment upload count", err)
	}
	return nil
}

// isConditionalCancellation reports whether a transaction was canceled
// because a condition check failed, which is how losing the create race
// surfaces.
func isConditionalCancellation(err error) bool {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return false
	}
	for _, reason := range canceled.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

// lookupClaim returns the brandId bound to a name, or "" when unclaimed.
// The read is strongly consistent so a race loser sees the winner's claim.
func (r *BrandRepository) lookupClaim(ctx context.Context, userID, brandName string) (string, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pkUserPrefix + userID},
			"SK": &types.AttributeValueMemberS{Value: skBrandNamePrefix + brandName},
		},
	})
	if err != nil {
		return "", apperrors.NewDatabaseError("get brand claim", err)
	}
	if out.Item == nil {
		return "", nil
	}
	var claim claimItem
	if err := attributevalue.UnmarshalMap(out.Item, &claim); err != nil {
		return "", apperrors.NewInternalError("failed to unmarshal brand claim").WithCause(err)
	}
	return claim.BrandID, nil
}

// getBrand loads a brand record by id.
func (r *BrandRepository) getBrand(ctx context.Context, userID, brandID string) (*gallery.Brand, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pkUserPrefix + userID},
			"SK": &types.AttributeValueMemberS{Value: skBrandPrefix + brandID},
		},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get brand record", err)
	}
	if out.Item == nil {
		return nil, apperrors.NewNotFoundError("brand")
	}
	var item brandItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal brand record").WithCause(err)
	}
	return toBrand(item), nil
}

func toBrand(item brandItem) *gallery.Brand {
	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)
	return &gallery.Brand{
		UserID:      item.UserID,
		BrandID:     item.BrandID,
		BrandName:   item.BrandName,
		UploadCount: item.UploadCount,
		Email:       item.Email,
		Groups:      item.Groups,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}
