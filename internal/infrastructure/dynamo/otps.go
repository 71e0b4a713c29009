package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/social-connect-api/internal/domain"
)

// OtpRepo manages one-time passcode records.
// PK: email — Put on the natural key replaces the prior record, keeping the
// at-most-one-record-per-email invariant without extra bookkeeping.
type OtpRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOtpRepo(client *dynamodb.Client, tableName string) *OtpRepo {
	return &OtpRepo{client: client, tableName: tableName}
}

func (r *OtpRepo) Put(ctx context.Context, v *domain.OtpVerification) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal otp verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OtpRepo) Get(ctx context.Context, email string) (*domain.OtpVerification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp verification not found: %w", domain.ErrNotFound)
	}
	var v domain.OtpVerification
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Delete removes the record for the email. Deleting a missing record is not
// an error.
func (r *OtpRepo) Delete(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	return err
}

// IncrementAttempts bumps the failed-attempt counter in a single atomic ADD
// and returns the post-increment value. Two concurrent wrong submissions both
// observe accurate counts, so parallel brute-force cannot lose increments.
func (r *OtpRepo) IncrementAttempts(ctx context.Context, email string) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("email", email),
		UpdateExpression: aws.String("ADD #ac :one"),
		ExpressionAttributeNames: map[string]string{
			"#ac": fieldAttemptCount,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		// The record must exist; otherwise ADD would create a phantom item.
		ConditionExpression: aws.String("attribute_exists(email)"),
		ReturnValues:        types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, fmt.Errorf("otp verification not found: %w", domain.ErrNotFound)
		}
		return 0, err
	}
	attr, ok := out.Attributes[fieldAttemptCount].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("unexpected attempt_count attribute in update response")
	}
	n, err := strconv.Atoi(attr.Value)
	if err != nil {
		return 0, fmt.Errorf("parse attempt_count: %w", err)
	}
	return n, nil
}

// Lock suspends verification for the email until the given Unix timestamp.
func (r *OtpRepo) Lock(ctx context.Context, email string, until int64) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldLockedUntil: until})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("email", email),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
