package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"go-booking-api/core/config"
	"go-booking-api/core/constants"
	"go-booking-api/core/logger"

	"github.com/hibiken/asynq"
)

// Enqueuer is the subset of *asynq.Client used by dispatchers.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

func NewClient(cfg config.RedisConfig) *asynq.Client {
	return asynq.NewClient(RedisOpt(cfg))
}

// NewTask marshals payload as JSON into a task of the given type.
func NewTask(taskType string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, body, opts...), nil
}

// Decode unmarshals a task payload; malformed payloads are never retried.
func Decode(task *asynq.Task, dest any) error {
	if err := json.Unmarshal(task.Payload(), dest); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	return nil
}

// Worker wraps the asynq server and its mux so modules can register handlers before Start.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewWorker(redisCfg config.RedisConfig, queueCfg config.QueueConfig) *Worker {
	concurrency := queueCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	srv := asynq.NewServer(RedisOpt(redisCfg), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			constants.QueueCritical: 6,
			constants.QueueDefault:  3,
			constants.QueueLow:      1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Queue:Worker:TaskFailed", "type", task.Type(), "error", err)
		}),
	})
	return &Worker{server: srv, mux: asynq.NewServeMux()}
}

func (w *Worker) HandleFunc(taskType string, handler func(context.Context, *asynq.Task) error) {
	w.mux.HandleFunc(taskType, handler)
}

func (w *Worker) Start() error {
	logger.Info("Queue:Worker:Start")
	return w.server.Start(w.mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
	logger.Info("Queue:Worker:Stopped")
}
