// Package worker hosts the background queue consumers.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Anikesh0001/test-practice/internal/config"
	"github.com/Anikesh0001/test-practice/internal/evalclient"
	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/Anikesh0001/test-practice/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisQueue pushes explain jobs onto the Redis list consumed by
// ExplainWorker.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) Push(ctx context.Context, job model.ExplainJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.ExplainQueue, payload).Err()
}

// ExplainWorker consumes the explain queue and backfills explanations onto
// stored results.
type ExplainWorker struct {
	rdb  *redis.Client
	st   store.Store
	eval *evalclient.Client
	log  zerolog.Logger
}

// NewExplainWorker creates a new ExplainWorker.
func NewExplainWorker(rdb *redis.Client, st store.Store, eval *evalclient.Client, log zerolog.Logger) *ExplainWorker {
	return &ExplainWorker{
		rdb:  rdb,
		st:   st,
		eval: eval,
		log:  log.With().Str("component", "explain_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ExplainWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ExplainWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.ExplainQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var job model.ExplainJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.backfill(ctx, &job); err != nil {
		w.log.Error().Err(err).
			Str("result_id", job.ResultID.String()).
			Str("question_id", job.QuestionID.String()).
			Msg("Backfill error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.ExplainQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

// backfill generates the explanation and patches the stored result detail.
// A job whose result or question vanished is dropped silently.
func (w *ExplainWorker) backfill(ctx context.Context, job *model.ExplainJob) error {
	q, err := w.st.LoadQuestion(ctx, job.QuestionID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil
		}
		return err
	}

	explanation, err := w.eval.Explain(ctx, q.Text, q.OptionMap(), job.CorrectAnswer)
	if err != nil {
		return err
	}

	res, err := w.st.LoadResult(ctx, job.ResultID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil
		}
		return err
	}

	patched := false
	for i := range res.Details {
		if res.Details[i].QuestionID == job.QuestionID && res.Details[i].Explanation == "" {
			res.Details[i].Explanation = explanation
			patched = true
		}
	}
	if !patched {
		return nil
	}
	return w.st.UpdateResult(ctx, res)
}

// drain processes all remaining items in the queue before shutdown.
func (w *ExplainWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.ExplainQueue).Result()
		if err != nil {
			break
		}

		var job model.ExplainJob
		if err := json.Unmarshal([]byte(result), &job); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.backfill(ctx, &job); err != nil {
			w.log.Error().Err(err).Msg("Drain backfill error")
			w.rdb.RPush(ctx, config.WorkerKey.ExplainQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
