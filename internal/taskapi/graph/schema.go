// Package graph defines the task service's GraphQL schema. Every resolver
// reads the caller's identity from the request context; the tenant is never
// taken from client input.
package graph

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"

	"taskhub/internal/identity"
	"taskhub/internal/taskapi/bus"
	"taskhub/internal/taskapi/domain"
	"taskhub/internal/taskapi/store"
)

// Resolver errors returned to clients.
var (
	ErrNotAuthorized = errors.New("not authorized")
	ErrNoTeam        = errors.New("not authorized or not part of a team")
)

// Deps are the collaborators the schema resolves against.
type Deps struct {
	Store  *store.Store
	Bus    *bus.Bus
	Logger *slog.Logger
}

// NewSchema builds the executable schema.
func NewSchema(deps Deps) (graphql.Schema, error) {
	r := &resolver{deps: deps}

	statusEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "TaskStatus",
		Values: graphql.EnumValueConfigMap{
			"todo":       {Value: domain.StatusTodo},
			"inprogress": {Value: domain.StatusInProgress},
			"done":       {Value: domain.StatusDone},
			"archived":   {Value: domain.StatusArchived},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"teamId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
	})

	taskType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Task",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.String},
			"status":      &graphql.Field{Type: graphql.NewNonNull(statusEnum)},
			"teamId":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"assigneeId":  &graphql.Field{Type: graphql.ID},
			"createdAt": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: resolveCreatedAt,
			},
			"assignee": &graphql.Field{
				Type:    userType,
				Resolve: r.resolveAssignee,
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"myTasks": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(taskType))),
				Resolve: r.resolveMyTasks,
			},
			"task": &graphql.Field{
				Type: taskType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveTask,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createTask": &graphql.Field{
				Type: graphql.NewNonNull(taskType),
				Args: graphql.FieldConfigArgument{
					"title":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"assigneeId":  &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: r.resolveCreateTask,
			},
			"updateTaskStatus": &graphql.Field{
				Type: graphql.NewNonNull(taskType),
				Args: graphql.FieldConfigArgument{
					"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(statusEnum)},
				},
				Resolve: r.resolveUpdateTaskStatus,
			},
			"assignTask": &graphql.Field{
				Type: graphql.NewNonNull(taskType),
				Args: graphql.FieldConfigArgument{
					"id":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"assigneeId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveAssignTask,
			},
		},
	})

	subscriptionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Subscription",
		Fields: graphql.Fields{
			"taskAdded": &graphql.Field{
				Type:      graphql.NewNonNull(taskType),
				Resolve:   resolveSubscriptionSource,
				Subscribe: r.subscribe(domain.TopicTaskCreated),
			},
			"taskUpdated": &graphql.Field{
				Type:      graphql.NewNonNull(taskType),
				Resolve:   resolveSubscriptionSource,
				Subscribe: r.subscribe(domain.TopicTaskUpdated),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:        queryType,
		Mutation:     mutationType,
		Subscription: subscriptionType,
	})
}

type resolver struct {
	deps Deps
}

func (r *resolver) resolveMyTasks(p graphql.ResolveParams) (interface{}, error) {
	uc, err := callerWithTeam(p)
	if err != nil {
		return nil, err
	}
	return r.deps.Store.ListByTeam(uc.TeamID), nil
}

func (r *resolver) resolveTask(p graphql.ResolveParams) (interface{}, error) {
	uc, err := callerWithTeam(p)
	if err != nil {
		return nil, err
	}

	task, err := r.deps.Store.Get(p.Args["id"].(string))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if task.TeamID != uc.TeamID {
		return nil, ErrNotAuthorized
	}
	return task, nil
}

func (r *resolver) resolveCreateTask(p graphql.ResolveParams) (interface{}, error) {
	uc, err := callerWithTeam(p)
	if err != nil {
		return nil, err
	}

	description, _ := p.Args["description"].(string)
	assigneeID, _ := p.Args["assigneeId"].(string)

	task := domain.Task{
		ID:          uuid.New().String(),
		Title:       p.Args["title"].(string),
		Description: description,
		Status:      domain.StatusTodo,
		TeamID:      uc.TeamID,
		AssigneeID:  assigneeID,
		CreatedAt:   time.Now(),
	}
	r.deps.Store.Create(task)

	r.publishTaskEvent(domain.EventTypeTaskCreated, task)
	return task, nil
}

func (r *resolver) resolveUpdateTaskStatus(p graphql.ResolveParams) (interface{}, error) {
	uc, err := callerWithTeam(p)
	if err != nil {
		return nil, err
	}

	status := p.Args["status"].(domain.TaskStatus)
	task, err := r.deps.Store.UpdateStatus(p.Args["id"].(string), uc.TeamID, status)
	if err != nil {
		return nil, mapStoreError(err)
	}

	r.publishTaskEvent(domain.EventTypeTaskStatusChanged, task)
	return task, nil
}

func (r *resolver) resolveAssignTask(p graphql.ResolveParams) (interface{}, error) {
	uc, err := callerWithTeam(p)
	if err != nil {
		return nil, err
	}

	task, err := r.deps.Store.Reassign(p.Args["id"].(string), uc.TeamID, p.Args["assigneeId"].(string))
	if err != nil {
		return nil, mapStoreError(err)
	}

	r.publishTaskEvent(domain.EventTypeTaskReassigned, task)
	return task, nil
}

// publishTaskEvent is the single dispatch path for every mutation kind.
func (r *resolver) publishTaskEvent(t domain.EventType, task domain.Task) {
	env, err := domain.NewEnvelope(t, task)
	if err != nil {
		r.deps.Logger.Error("failed to build event envelope", "type", t, "error", err)
		return
	}
	delivered := r.deps.Bus.Publish(*env)
	r.deps.Logger.Debug("task event published",
		"type", t,
		"task_id", task.ID,
		"team_id", task.TeamID,
		"delivered", delivered)
}

func (r *resolver) resolveAssignee(p graphql.ResolveParams) (interface{}, error) {
	task, ok := p.Source.(domain.Task)
	if !ok {
		return nil, nil
	}
	if task.AssigneeID == "" {
		return nil, nil
	}
	if member, ok := r.deps.Store.MemberByID(task.AssigneeID); ok {
		return member, nil
	}
	return nil, nil
}

// subscribe opens a tenant-filtered bus subscription and adapts it to the
// executor's source-channel contract. Cancelling the request context
// deregisters from the bus.
func (r *resolver) subscribe(topic domain.Topic) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		sc := bus.SubscriberContext{}
		if uc, ok := identity.FromContext(p.Context); ok {
			sc = bus.SubscriberContext{UserID: uc.UserID, TeamID: uc.TeamID}
		}

		events, cancel := r.deps.Bus.Subscribe(topic, sc)
		out := make(chan interface{})
		go func() {
			defer close(out)
			defer cancel()
			for {
				select {
				case <-p.Context.Done():
					return
				case env, ok := <-events:
					if !ok {
						return
					}
					select {
					case out <- env.Task:
					case <-p.Context.Done():
						return
					}
				}
			}
		}()
		return out, nil
	}
}

func resolveSubscriptionSource(p graphql.ResolveParams) (interface{}, error) {
	return p.Source, nil
}

func resolveCreatedAt(p graphql.ResolveParams) (interface{}, error) {
	task, ok := p.Source.(domain.Task)
	if !ok {
		return nil, nil
	}
	return task.CreatedAt.UTC().Format(time.RFC3339), nil
}

// callerWithTeam extracts the verified identity and requires a tenant.
func callerWithTeam(p graphql.ResolveParams) (*identity.UserContext, error) {
	uc, ok := identity.FromContext(p.Context)
	if !ok || uc.TeamID == "" {
		return nil, ErrNoTeam
	}
	return uc, nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, domain.ErrTenantMismatch):
		return ErrNotAuthorized
	case errors.Is(err, domain.ErrTaskNotFound):
		return errors.New("task not found")
	default:
		return err
	}
}
