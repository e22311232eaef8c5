package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"pinboard-api/media"
	"pinboard-api/tasks"
)

// Server runs the background job processor in-process.
type Server struct {
	server  *asynq.Server
	gateway media.Gateway
	log     *logrus.Entry
}

func NewServer(redisOpt asynq.RedisClientOpt, gateway media.Gateway, logger *logrus.Logger) *Server {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 4,
			Logger:      logEntry,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &Server{server: server, gateway: gateway, log: logEntry}
}

func (s *Server) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeAssetCleanup, NewAssetCleanupHandler(s.gateway, s.log))
	return mux
}

// Start begins processing in background goroutines and returns immediately.
func (s *Server) Start() error {
	s.log.Info("Worker server starting...")
	return s.server.Start(s.Mux())
}

func (s *Server) Shutdown() {
	s.server.Shutdown()
	s.log.Info("Worker server stopped.")
}
