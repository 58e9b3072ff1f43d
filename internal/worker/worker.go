package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"taskify/backend/internal/config"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

type JobType string

const (
	JobTypeTaskReminder JobType = "task_reminder"
	JobTypeCleanup      JobType = "cleanup"
)

const ReminderQueueName = "reminders"

type Job struct {
	ID        string                 `json:"id"`
	Type      JobType                `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Attempts  int                    `json:"attempts"`
	MaxTries  int                    `json:"max_tries"`
	CreatedAt time.Time              `json:"created_at"`
	ProcessAt time.Time              `json:"process_at"`
}

type JobHandler func(ctx context.Context, job *Job) error

// Worker drains redis list queues with a pool of goroutines. Failed jobs are
// requeued until MaxTries is exhausted.
type Worker struct {
	client       *redis.Client
	queues       []string
	concurrency  int
	pollInterval time.Duration
	maxTries     int

	mu       sync.RWMutex
	handlers map[JobType]JobHandler

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(client *redis.Client, cfg config.WorkerConfig) *Worker {
	queues := cfg.Queues
	if len(queues) == 0 {
		queues = []string{ReminderQueueName}
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	maxTries := cfg.MaxTries
	if maxTries < 1 {
		maxTries = 3
	}

	return &Worker{
		client:       client,
		queues:       queues,
		concurrency:  concurrency,
		pollInterval: pollInterval,
		maxTries:     maxTries,
		handlers:     make(map[JobType]JobHandler),
	}
}

func (w *Worker) Register(jobType JobType, handler JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

func (w *Worker) Enqueue(ctx context.Context, queue string, job *Job) error {
	if job.ID == "" {
		job.ID = uuid.Must(uuid.NewV4()).String()
	}
	if job.MaxTries == 0 {
		job.MaxTries = w.maxTries
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return w.client.LPush(ctx, queueKey(queue), data).Err()
}

// EnqueueTaskReminder satisfies services.ReminderQueue.
func (w *Worker) EnqueueTaskReminder(ctx context.Context, task models.Task) error {
	if task.DueDate == nil {
		return nil
	}

	return w.Enqueue(ctx, ReminderQueueName, &Job{
		Type: JobTypeTaskReminder,
		Payload: map[string]interface{}{
			"task_id": task.ID.String(),
			"user_id": task.UserID.String(),
			"title":   task.Title,
		},
		ProcessAt: *task.DueDate,
	})
}

func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}
}

func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	keys := make([]string, len(w.queues))
	for i, q := range w.queues {
		keys[i] = queueKey(q)
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result, err := w.client.BRPop(ctx, w.pollInterval, keys...).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			log.Printf("worker: failed to pop job: %v", err)
			continue
		}

		// BRPOP returns [key, value].
		if len(result) != 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("worker: dropping undecodable job: %v", err)
			continue
		}

		w.process(ctx, result[0], &job)
	}
}

func (w *Worker) process(ctx context.Context, queue string, job *Job) {
	w.mu.RLock()
	handler, ok := w.handlers[job.Type]
	w.mu.RUnlock()

	if !ok {
		log.Printf("worker: no handler registered for job type %s", job.Type)
		return
	}

	job.Attempts++
	if err := handler(ctx, job); err != nil {
		if job.Attempts >= job.MaxTries {
			log.Printf("worker: job %s failed permanently after %d attempts: %v", job.ID, job.Attempts, err)
			return
		}

		data, marshalErr := json.Marshal(job)
		if marshalErr != nil {
			log.Printf("worker: failed to requeue job %s: %v", job.ID, marshalErr)
			return
		}
		if pushErr := w.client.LPush(ctx, queueKey(queue), data).Err(); pushErr != nil {
			log.Printf("worker: failed to requeue job %s: %v", job.ID, pushErr)
		}
	}
}

func queueKey(queue string) string {
	return "queue:" + queue
}
