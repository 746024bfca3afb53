package tasktree

import (
	"context"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmrecipes/common"
	"github.com/mensylisir/xmrecipes/util"
)

// Runner executes a task tree. Sequential groups run in order, each node
// starting only after the previous node is terminal; concurrent groups
// run siblings on a worker pool with no ordering between them.
type Runner struct {
	concurrency int
	log         *logrus.Entry
}

// NewRunner creates a Runner. concurrency bounds the worker pool used for
// concurrent groups; values below 1 are raised to 1.
func NewRunner(concurrency int, log *logrus.Entry) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{concurrency: concurrency, log: log}
}

// Run executes the top-level tasks sequentially against the shared
// context. The returned results mirror the visible (enabled) tasks; the
// error aggregates everything that failed.
func (r *Runner) Run(ctx context.Context, c *Context, tasks []*Task) ([]*TaskResult, error) {
	log := r.log.WithField(common.LogFieldRunID, c.RunID())
	return r.runGroup(ctx, c, tasks, false, false, log)
}

func (r *Runner) runGroup(ctx context.Context, c *Context, tasks []*Task, concurrent, continueOnError bool, log *logrus.Entry) ([]*TaskResult, error) {
	if concurrent {
		return r.runConcurrent(ctx, c, tasks, log)
	}
	return r.runSequential(ctx, c, tasks, continueOnError, log)
}

func (r *Runner) runSequential(ctx context.Context, c *Context, tasks []*Task, continueOnError bool, log *logrus.Entry) ([]*TaskResult, error) {
	var results []*TaskResult
	var errs []error

	for _, t := range tasks {
		if !enabled(t, c) {
			log.Debugf("Task %q disabled, not visible in this run", t.Title)
			continue
		}
		res := r.runTask(ctx, c, t, log)
		results = append(results, res)

		if res.Status == TaskFailed {
			errs = append(errs, errors.Wrapf(res.Err, "task %q failed", t.Title))
			if !continueOnError {
				log.Errorf("Task %q failed, halting remaining siblings: %v", t.Title, res.Err)
				return results, util.CombineErrors(errs...)
			}
			log.Warnf("Task %q failed, continuing (continue-on-error): %v", t.Title, res.Err)
		}
	}
	return results, util.CombineErrors(errs...)
}

func (r *Runner) runConcurrent(ctx context.Context, c *Context, tasks []*Task, log *logrus.Entry) ([]*TaskResult, error) {
	wp := workerpool.New(r.concurrency)

	var mu sync.Mutex
	results := make([]*TaskResult, 0, len(tasks))
	slots := make([]*TaskResult, len(tasks))
	var errs []error

	for i, t := range tasks {
		if !enabled(t, c) {
			log.Debugf("Task %q disabled, not visible in this run", t.Title)
			continue
		}
		i, t := i, t
		wp.Submit(func() {
			res := r.runTask(ctx, c, t, log)
			mu.Lock()
			slots[i] = res
			if res.Status == TaskFailed {
				errs = append(errs, errors.Wrapf(res.Err, "task %q failed", t.Title))
			}
			mu.Unlock()
		})
	}
	wp.StopWait()

	// Report in declaration order even though completion order varied.
	for _, res := range slots {
		if res != nil {
			results = append(results, res)
		}
	}
	return results, util.CombineErrors(errs...)
}

func (r *Runner) runTask(ctx context.Context, c *Context, t *Task, log *logrus.Entry) *TaskResult {
	taskLog := log.WithField(common.LogFieldTaskName, t.Title)
	res := &TaskResult{Title: t.Title, Status: TaskSuccess}

	if t.Skip != nil && t.Skip(c) {
		taskLog.Infof("Task %q skipped", t.Title)
		res.Status = TaskSkipped
		return res
	}

	if t.Run != nil {
		taskLog.Debugf("Task %q starting", t.Title)
		if err := t.Run(ctx, c, taskLog); err != nil {
			res.Status = TaskFailed
			res.Err = err
			return res
		}
	}

	if len(t.Tasks) > 0 {
		children, err := r.runGroup(ctx, c, t.Tasks, t.Concurrent, t.ContinueOnError, taskLog)
		res.Children = children
		if err != nil {
			res.Status = TaskFailed
			res.Err = err
		}
	}
	return res
}

func enabled(t *Task, c *Context) bool {
	return t.Enabled == nil || t.Enabled(c)
}
