package service

import (
	"context"
	"log"
	"sync"
	"time"

	"frigo/internal/domain"
	"frigo/internal/port"
)

// ImportQueueConfig holds settings for the import retry queue worker.
type ImportQueueConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
	Concurrency  int
}

// A claim older than twice the pipeline deadline cannot still be running; the
// worker that held it is gone.
const staleClaimAge = 2 * pipelineTimeout

// ImportQueueWorker polls for rate-limited import jobs whose backoff has
// elapsed and resumes their pipelines.
type ImportQueueWorker struct {
	jobRepo   port.ImportJobRepository
	importSvc ImportService
	cfg       ImportQueueConfig
	wg        sync.WaitGroup
}

// NewImportQueueWorker creates a new ImportQueueWorker.
func NewImportQueueWorker(jobRepo port.ImportJobRepository, importSvc ImportService, cfg ImportQueueConfig) *ImportQueueWorker {
	return &ImportQueueWorker{
		jobRepo:   jobRepo,
		importSvc: importSvc,
		cfg:       cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight pipeline goroutines have finished.
func (w *ImportQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("importQueueWorker: started (poll=%s, concurrency=%d, maxAttempts=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxAttempts)

	for {
		select {
		case <-ctx.Done():
			log.Printf("importQueueWorker: shutting down, waiting for in-flight jobs...")
			w.wg.Wait()
			log.Printf("importQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			if n, err := w.jobRepo.RequeueStale(ctx, staleClaimAge); err != nil {
				if ctx.Err() == nil {
					log.Printf("importQueueWorker: RequeueStale error: %v", err)
				}
			} else if n > 0 {
				log.Printf("importQueueWorker: requeued %d stale claims", n)
			}

			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			jobs, err := w.jobRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					// Context canceled during poll, exit on next select
					continue
				}
				log.Printf("importQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range jobs {
				job := jobs[i] // copy for goroutine

				if w.cfg.MaxAttempts > 0 && job.Attempts >= w.cfg.MaxAttempts {
					w.exhaust(ctx, &job)
					continue
				}

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight pipelines complete even during shutdown.
					jobCtx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
					defer cancel()

					log.Printf("importQueueWorker: resuming job %s (attempt %d)", job.ID, job.Attempts)
					w.importSvc.RunPipeline(jobCtx, &job)
				}()
			}
		}
	}
}

// exhaust marks a reclaimed job as failed once its structuring attempts are
// spent, instead of dispatching it again.
func (w *ImportQueueWorker) exhaust(ctx context.Context, job *domain.ImportJob) {
	next, err := domain.NextState(job.State, domain.EventFailed)
	if err != nil {
		log.Printf("importQueueWorker: job %s: %v", job.ID, err)
		return
	}
	job.State = next
	job.ErrorCode = errCodeRateLimited
	job.ErrorMessage = "structuring retries exhausted"
	if err := w.jobRepo.Update(ctx, job); err != nil {
		log.Printf("importQueueWorker: job %s: %v", job.ID, err)
		return
	}
	log.Printf("importQueueWorker: job %s failed after %d attempts", job.ID, job.Attempts)
}
