package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/taskbox-api/internal/domain"
)

// TodoRepo provides typed DynamoDB operations for the todos table.
type TodoRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTodoRepo(client *dynamodb.Client, tableName string) *TodoRepo {
	return &TodoRepo{client: client, tableName: tableName}
}

func (r *TodoRepo) Put(ctx context.Context, t *domain.Todo) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal todo: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *TodoRepo) Get(ctx context.Context, todoID string) (*domain.Todo, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("todo_id", todoID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("todo not found: %w", domain.ErrNotFound)
	}
	var t domain.Todo
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Scan returns all todos. The table is small by construction; pagination is
// not offered on this resource.
func (r *TodoRepo) Scan(ctx context.Context) ([]domain.Todo, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var todos []domain.Todo
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// Update applies a partial update. Returns domain.ErrNotFound when no row
// exists for todoID.
func (r *TodoRepo) Update(ctx context.Context, todoID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("todo_id", todoID),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(todo_id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if conditionFailed(err) {
			return fmt.Errorf("todo not found: %w", domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (r *TodoRepo) Delete(ctx context.Context, todoID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("todo_id", todoID),
		ConditionExpression: aws.String("attribute_exists(todo_id)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return fmt.Errorf("todo not found: %w", domain.ErrNotFound)
		}
		return err
	}
	return nil
}
