package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/strrl/session-trim/internal/config"
	"github.com/strrl/session-trim/internal/transform"
	"github.com/strrl/session-trim/pkg/models"
)

// ErrVerification is returned when a written output does not read back as expected
var ErrVerification = errors.New("verification failed")

// Job is one input/output pair with its column selection
type Job struct {
	Name       string
	Input      string
	Output     string
	Projection transform.Projection
	Options    transform.Options
}

// Verifier checks a finished output file
type Verifier interface {
	Verify(ctx context.Context, output string, p transform.Projection, opts transform.Options, wantRows int) (*models.DatasetStats, error)
}

// Runner executes jobs one after another
type Runner struct {
	logger   *zap.Logger
	verifier Verifier
}

// NewRunner creates a runner. verifier may be nil.
func NewRunner(logger *zap.Logger, verifier Verifier) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, verifier: verifier}
}

// JobsFromConfig expands the configured jobs with resolved paths
func JobsFromConfig(cfg *config.Config) []Job {
	jobs := make([]Job, 0, len(cfg.Jobs))
	for _, j := range cfg.Jobs {
		jobs = append(jobs, Job{
			Name:       j.Name,
			Input:      cfg.ResolvePath(j.Input),
			Output:     cfg.ResolvePath(j.Output),
			Projection: cfg.Projection(j),
			Options:    cfg.Options(j),
		})
	}
	return jobs
}

// Run transforms every job in order and stops at the first failure; jobs
// after a failed one are not started. Summaries of the completed jobs are
// returned alongside the error.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]models.JobSummary, error) {
	logger := r.logger.With(zap.String("run_id", uuid.NewString()))
	logger.Info("run started", zap.Int("jobs", len(jobs)))

	summaries := make([]models.JobSummary, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}

		summary, err := r.runJob(ctx, logger.With(zap.String("job", job.Name)), job)
		if err != nil {
			return summaries, fmt.Errorf("job %q: %w", job.Name, err)
		}
		summaries = append(summaries, summary)
	}

	logger.Info("run finished", zap.Int("jobs", len(summaries)))
	return summaries, nil
}

func (r *Runner) runJob(ctx context.Context, logger *zap.Logger, job Job) (models.JobSummary, error) {
	logger.Debug("transform started",
		zap.String("input", job.Input),
		zap.String("output", job.Output),
		zap.Stringer("projection", job.Projection),
		zap.String("overwrite", string(job.Options.Overwrite)),
	)

	res, err := transform.TransformFile(job.Input, job.Output, job.Projection, job.Options)
	if err != nil {
		logger.Error("transform failed", zap.Int("rows_written", res.Rows), zap.Error(err))
		return models.JobSummary{}, err
	}

	summary := models.JobSummary{
		Name:     job.Name,
		Input:    res.Input,
		Output:   res.Output,
		Rows:     res.Rows,
		Duration: res.Duration,
	}

	if r.verifier != nil && res.Rows > 0 {
		stats, err := r.verifier.Verify(ctx, job.Output, job.Projection, job.Options, res.Rows)
		if err != nil {
			logger.Error("verification failed", zap.Error(err))
			return summary, fmt.Errorf("%w: %w", ErrVerification, err)
		}
		summary.Stats = stats
	}

	logger.Info("transform finished",
		zap.String("output", res.Output),
		zap.Int("rows", res.Rows),
		zap.Duration("duration", res.Duration),
	)
	return summary, nil
}
