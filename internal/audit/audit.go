package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// ActorType represents the kind of entity performing an action.
type ActorType string

const (
	ActorTypeUser      ActorType = "user"
	ActorTypeAnonymous ActorType = "anonymous"
	ActorTypeSystem    ActorType = "system"
)

// ResourceType represents the kind of resource being acted upon.
type ResourceType string

const (
	ResourceTypeFile   ResourceType = "file"
	ResourceTypeFolder ResourceType = "folder"
	ResourceTypeUser   ResourceType = "user"
)

// Action represents the operation performed.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpload     Action = "upload"
	ActionDownload   Action = "download"
	ActionUpdate     Action = "update"
	ActionRename     Action = "rename"
	ActionMove       Action = "move"
	ActionDelete     Action = "delete"
	ActionVisibility Action = "visibility"
	ActionLogin      Action = "login"
	ActionRegister   Action = "register"
)

// Status represents the outcome of an action.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

// contextKeyUserID is the echo context key the JWT middleware sets for
// authenticated requests.
const contextKeyUserID = "user_id"

const asyncLogTimeout = 2 * time.Second

// Event is a single audit record.
type Event struct {
	ID           uuid.UUID
	EventType    string
	ActorType    ActorType
	ActorID      *uuid.UUID
	ResourceType ResourceType
	ResourceID   *uuid.UUID
	Action       Action
	Status       Status
	IPAddress    string
	UserAgent    string
	RequestID    string
	Metadata     map[string]any
	ErrorMessage string
	CreatedAt    time.Time
}

// Logger writes audit events to the audit_events table.
type Logger struct {
	pool *pgxpool.Pool
}

func NewLogger(pool *pgxpool.Pool) *Logger {
	return &Logger{pool: pool}
}

func (l *Logger) Log(ctx context.Context, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var metadataJSON []byte
	var err error
	if event.Metadata != nil {
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO audit_events (
			id, event_type, actor_type, actor_id, resource_type, resource_id,
			action, status, ip_address, user_agent, request_id, metadata, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = l.pool.Exec(ctx, query,
		event.ID,
		event.EventType,
		event.ActorType,
		event.ActorID,
		event.ResourceType,
		event.ResourceID,
		event.Action,
		event.Status,
		event.IPAddress,
		event.UserAgent,
		event.RequestID,
		metadataJSON,
		event.ErrorMessage,
		event.CreatedAt,
	)

	return err
}

// Record builds an event from the request context and logs it
// asynchronously so the request path never blocks on the audit table.
func (l *Logger) Record(c echo.Context, resourceType ResourceType, resourceID *uuid.UUID, action Action, status Status, metadata map[string]any) {
	event := &Event{
		EventType:    string(action) + "_" + string(resourceType),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Action:       action,
		Status:       status,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
		RequestID:    c.Response().Header().Get(echo.HeaderXRequestID),
		Metadata:     metadata,
	}

	event.ActorType = ActorTypeAnonymous
	if userID, ok := c.Get(contextKeyUserID).(uuid.UUID); ok {
		event.ActorType = ActorTypeUser
		event.ActorID = &userID
	}

	ctx, cancel := context.WithTimeout(context.Background(), asyncLogTimeout)
	go func() {
		defer cancel()
		if err := l.Log(ctx, event); err != nil {
			fmt.Fprintf(c.Logger().Output(), "audit log failed: %v\n", err)
		}
	}()
}

// RecordError logs a failed action with its error message.
func (l *Logger) RecordError(c echo.Context, resourceType ResourceType, resourceID *uuid.UUID, action Action, actionErr error) {
	event := &Event{
		EventType:    string(action) + "_" + string(resourceType),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Action:       action,
		Status:       StatusFailure,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
		RequestID:    c.Response().Header().Get(echo.HeaderXRequestID),
		ErrorMessage: actionErr.Error(),
	}

	event.ActorType = ActorTypeAnonymous
	if userID, ok := c.Get(contextKeyUserID).(uuid.UUID); ok {
		event.ActorType = ActorTypeUser
		event.ActorID = &userID
	}

	ctx, cancel := context.WithTimeout(context.Background(), asyncLogTimeout)
	go func() {
		defer cancel()
		if err := l.Log(ctx, event); err != nil {
			fmt.Fprintf(c.Logger().Output(), "audit log failed: %v\n", err)
		}
	}()
}

// QueryFilter narrows Query results.
type QueryFilter struct {
	ActorID      *uuid.UUID
	ResourceType *ResourceType
	ResourceID   *uuid.UUID
	Action       *Action
	Status       *Status
	StartTime    *time.Time
	EndTime      *time.Time
	Limit        int
	Offset       int
}

const defaultQueryLimit = 100

// Query retrieves audit events, newest first.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]*Event, error) {
	query := `
		SELECT id, event_type, actor_type, actor_id, resource_type, resource_id,
		       action, status, ip_address, user_agent, request_id, metadata, error_message, created_at
		FROM audit_events
		WHERE TRUE
	`
	args := []any{}

	appendCond := func(cond string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(" AND "+cond, len(args))
	}

	if filter.ActorID != nil {
		appendCond("actor_id = $%d", filter.ActorID)
	}
	if filter.ResourceType != nil {
		appendCond("resource_type = $%d", filter.ResourceType)
	}
	if filter.ResourceID != nil {
		appendCond("resource_id = $%d", filter.ResourceID)
	}
	if filter.Action != nil {
		appendCond("action = $%d", filter.Action)
	}
	if filter.Status != nil {
		appendCond("status = $%d", filter.Status)
	}
	if filter.StartTime != nil {
		appendCond("created_at >= $%d", filter.StartTime)
	}
	if filter.EndTime != nil {
		appendCond("created_at <= $%d", filter.EndTime)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		event := &Event{}
		var metadataJSON []byte

		err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.ActorType,
			&event.ActorID,
			&event.ResourceType,
			&event.ResourceID,
			&event.Action,
			&event.Status,
			&event.IPAddress,
			&event.UserAgent,
			&event.RequestID,
			&metadataJSON,
			&event.ErrorMessage,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				return nil, err
			}
		}

		events = append(events, event)
	}

	return events, rows.Err()
}
