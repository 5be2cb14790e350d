package domain

import "time"

type Todo struct {
	TodoID     string    `json:"id" dynamodbav:"todo_id"`
	TodoImage  string    `json:"todo_image" dynamodbav:"todo_image"`
	TodoName   string    `json:"todo_name" dynamodbav:"todo_name"`
	TodoDesc   string    `json:"todo_desc" dynamodbav:"todo_desc"`
	TodoStatus string    `json:"todo_status" dynamodbav:"todo_status"`
	CreatedBy  string    `json:"created_by" dynamodbav:"created_by"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateTodoRequest struct {
	TodoImage  string `json:"todo_image" validate:"required"`
	TodoName   string `json:"todo_name" validate:"required"`
	TodoDesc   string `json:"todo_desc" validate:"required"`
	TodoStatus string `json:"todo_status" validate:"required"`
}

type UpdateTodoRequest struct {
	TodoImage  *string `json:"todo_image"`
	TodoName   *string `json:"todo_name"`
	TodoDesc   *string `json:"todo_desc"`
	TodoStatus *string `json:"todo_status"`
}
