// Package jobs runs background work: refresh-token persistence queued by the
// session manager and the periodic purge of expired tokens.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type TaskType string

const (
	TaskPersistRefreshToken TaskType = "refresh_tokens.persist"
	TaskPurgeRefreshTokens  TaskType = "refresh_tokens.purge"
)

var (
	ErrQueueFull   = errors.New("task queue full")
	ErrQueueClosed = errors.New("task queue closed")
)

type Task struct {
	Type    TaskType        `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Queue accepts tasks for asynchronous execution.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
}

// Handler executes a single task.
type Handler interface {
	Handle(ctx context.Context, task Task) error
}

type PersistRefreshTokenPayload struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func NewPersistRefreshTokenTask(p PersistRefreshTokenPayload) (Task, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return Task{}, fmt.Errorf("encode persist payload: %w", err)
	}
	return Task{Type: TaskPersistRefreshToken, Payload: raw}, nil
}

func NewPurgeRefreshTokensTask() Task {
	return Task{Type: TaskPurgeRefreshTokens}
}
