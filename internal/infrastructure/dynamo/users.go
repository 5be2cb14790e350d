package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/taskbox-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
//
// Uniqueness of email and personal_id is enforced at the store: every insert
// writes guard rows into the uniques table inside the same transaction as the
// user item, each with an attribute_not_exists condition. Two concurrent
// registrations with the same email cannot both commit, regardless of what
// the callers pre-checked.
type UserRepo struct {
	client       *dynamodb.Client
	tableName    string
	uniquesTable string
}

func NewUserRepo(client *dynamodb.Client, tableName, uniquesTable string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName, uniquesTable: uniquesTable}
}

func emailGuard(email string) string    { return "EMAIL#" + strings.ToLower(email) }
func personalIDGuard(pid string) string { return "PID#" + pid }

func (r *UserRepo) guardPut(value string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(r.uniquesTable),
			Item:                strKey("guard_value", value),
			ConditionExpression: aws.String("attribute_not_exists(guard_value)"),
		},
	}
}

func (r *UserRepo) guardDelete(value string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(r.uniquesTable),
			Key:       strKey("guard_value", value),
		},
	}
}

// Insert writes the user and its uniqueness guards in one transaction.
// Returns domain.ErrConflict when the email or personal_id is already taken.
func (r *UserRepo) Insert(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(r.tableName),
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(user_id)"),
				},
			},
			r.guardPut(emailGuard(u.Email)),
			r.guardPut(personalIDGuard(u.PersonalID)),
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return fmt.Errorf("email or personal id already registered: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryGSI(ctx, "email-index", "email", email)
}

func (r *UserRepo) GetByPersonalID(ctx context.Context, personalID string) (*domain.User, error) {
	return r.queryGSI(ctx, "personal_id-index", "personal_id", personalID)
}

// Update applies a partial update. Returns domain.ErrNotFound when no row
// exists for userID.
func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(user_id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if conditionFailed(err) {
			return fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return err
	}
	return nil
}

// Delete removes the user row together with its uniqueness guards so the
// email and personal_id become available again.
func (r *UserRepo) Delete(ctx context.Context, u *domain.User) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Delete: &types.Delete{
					TableName:           aws.String(r.tableName),
					Key:                 strKey("user_id", u.UserID),
					ConditionExpression: aws.String("attribute_exists(user_id)"),
				},
			},
			r.guardDelete(emailGuard(u.Email)),
			r.guardDelete(personalIDGuard(u.PersonalID)),
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// conditionFailed reports whether err is a conditional-check failure, either
// directly or as a cancellation reason inside a transaction.
func conditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}
