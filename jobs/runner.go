//go:build unix

package jobs

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/tgrossb/mush/syntax"
)

// Job diagnostics, controlled by the MUSH_LOG_JOBS environment variable.
var logJobs = os.Getenv("MUSH_LOG_JOBS") != ""

// Runner tracks pipeline jobs. Create one with NewRunner; methods are meant
// for a single controlling goroutine.
type Runner struct {
	env syntax.Env

	// execPath is the binary re-exec'd as the leader. Defaults to the
	// current executable; tests point it at the test binary.
	execPath string

	mu      sync.Mutex
	jobs    *Job
	pauseCh chan struct{}
}

// NewRunner creates a runner whose pipeline arguments are evaluated against
// env. A nil env resolves every variable to the empty string.
func NewRunner(env syntax.Env) *Runner {
	r := &Runner{env: env}
	_ = r.Init()
	return r
}

// Init prepares the runner. It is idempotent.
func (r *Runner) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pauseCh == nil {
		r.pauseCh = make(chan struct{})
	}
	if r.execPath == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("jobs: locating executable: %w", err)
		}
		r.execPath = exe
	}
	return nil
}

// Fini cancels every non-terminal job, waits for all jobs to be reaped, and
// releases every job record and captured buffer.
func (r *Runner) Fini() error {
	r.mu.Lock()
	var ids []int
	for j := r.jobs; j != nil; j = j.next {
		ids = append(ids, j.id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		_ = r.Cancel(id)
	}
	for _, id := range ids {
		_, _ = r.Wait(id)
	}
	for _, id := range ids {
		_ = r.Expunge(id)
	}

	r.broadcast()
	return nil
}

// Run starts a new job executing pline and returns its id. The job is
// RUNNING when Run returns. Argument expressions are evaluated against the
// runner's environment at this point.
func (r *Runner) Run(pline *syntax.Pipeline) (int, error) {
	if pline == nil || len(pline.Commands) == 0 {
		return -1, ErrEmptyPipeline
	}

	m := manifest{
		InputFile:  pline.InputFile,
		OutputFile: pline.OutputFile,
		Capture:    pline.CaptureOutput,
	}
	for _, c := range pline.Commands {
		argv := make([]string, 0, len(c.Args))
		for _, arg := range c.Args {
			argv = append(argv, arg.Expr.Eval(r.env))
		}
		if len(argv) == 0 {
			return -1, ErrEmptyPipeline
		}
		m.Stages = append(m.Stages, argv)
	}
	spec, err := m.encode()
	if err != nil {
		return -1, fmt.Errorf("jobs: encoding pipeline: %w", err)
	}

	if err := r.Init(); err != nil {
		return -1, err
	}

	cmd := exec.Command(r.execPath)
	cmd.Env = append(os.Environ(), leaderEnv+"="+spec)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// The leader must be a fresh process group before Run returns, so that
	// Cancel's group SIGKILL can never miss it.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var captureR, captureW *os.File
	if pline.CaptureOutput {
		captureR, captureW, err = os.Pipe()
		if err != nil {
			return -1, fmt.Errorf("jobs: capture pipe: %w", err)
		}
		cmd.Stdout = captureW
	}

	if err := cmd.Start(); err != nil {
		if captureR != nil {
			captureR.Close()
			captureW.Close()
		}
		return -1, fmt.Errorf("jobs: starting leader: %w", err)
	}
	if captureW != nil {
		// The parent keeps only the read end; EOF then tracks the death of
		// the leader and its last stage.
		captureW.Close()
	}

	j := &Job{
		pgid:     cmd.Process.Pid,
		pipeline: pline,
		done:     make(chan struct{}),
	}
	j.status.Store(int32(StatusNew))
	j.status.Store(int32(StatusRunning))

	r.mu.Lock()
	j.id = r.nextIDLocked()
	j.next = r.jobs
	r.jobs = j
	r.mu.Unlock()

	captureDone := make(chan struct{})
	if captureR != nil {
		go func() {
			// Loop until EOF; partial reads are expected.
			out, _ := io.ReadAll(captureR)
			captureR.Close()
			j.output = out
			close(captureDone)
		}()
	} else {
		close(captureDone)
	}

	go r.observe(j, cmd, captureDone)

	if logJobs {
		fmt.Fprintf(os.Stderr, "[JOBS] run: job=%d pgid=%d stages=%d\n",
			j.id, j.pgid, len(m.Stages))
	}
	return j.id, nil
}

// observe reaps the job's leader and performs the one-shot transition out of
// RUNNING.
func (r *Runner) observe(j *Job, cmd *exec.Cmd, captureDone <-chan struct{}) {
	_ = cmd.Wait()
	<-captureDone

	ws, _ := cmd.ProcessState.Sys().(syscall.WaitStatus)
	j.waitStatus = int(ws)

	status := StatusCompleted
	if ws.Signaled() {
		r.mu.Lock()
		canceled := j.canceled
		r.mu.Unlock()
		if ws.Signal() == unix.SIGKILL && canceled {
			status = StatusCanceled
		} else {
			status = StatusAborted
		}
	}
	j.status.CompareAndSwap(int32(StatusRunning), int32(status))

	if logJobs {
		fmt.Fprintf(os.Stderr, "[JOBS] reaped: job=%d status=%s wait=%#x\n",
			j.id, j.Status(), j.waitStatus)
	}

	close(j.done)
	r.broadcast()
}

// Wait blocks until the leader of the job has been reaped and returns its
// raw wait status.
func (r *Runner) Wait(jobid int) (int, error) {
	j := r.find(jobid)
	if j == nil {
		return -1, ErrUnknownJob
	}
	<-j.done
	return j.waitStatus, nil
}

// Status returns the current state of a job.
func (r *Runner) Status(jobid int) (Status, error) {
	j := r.find(jobid)
	if j == nil {
		return StatusNew, ErrUnknownJob
	}
	return j.Status(), nil
}

// Poll reports whether the job has reached a terminal state.
func (r *Runner) Poll(jobid int) (bool, error) {
	j := r.find(jobid)
	if j == nil {
		return false, ErrUnknownJob
	}
	return j.Status().Terminal(), nil
}

// Cancel requests cancellation of a live job by sending SIGKILL to its
// process group. At most one cancel per job succeeds.
func (r *Runner) Cancel(jobid int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j := r.findLocked(jobid)
	if j == nil {
		return ErrUnknownJob
	}
	if j.Status().Terminal() || j.canceled {
		return ErrCancelDenied
	}
	j.canceled = true
	if err := unix.Kill(-j.pgid, unix.SIGKILL); err != nil {
		return fmt.Errorf("jobs: killing group %d: %w", j.pgid, err)
	}
	return nil
}

// Expunge removes a terminal job from the table, releasing its pipeline and
// captured output.
func (r *Runner) Expunge(jobid int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var prev *Job
	for j := r.jobs; j != nil; prev, j = j, j.next {
		if j.id != jobid {
			continue
		}
		if !j.Status().Terminal() {
			return ErrNotTerminated
		}
		if prev == nil {
			r.jobs = j.next
		} else {
			prev.next = j.next
		}
		j.pipeline = nil
		j.output = nil
		return nil
	}
	return ErrUnknownJob
}

// Output returns the captured stdout of a terminal job, or nil when the job
// is unknown, still live, or captured nothing.
func (r *Runner) Output(jobid int) []byte {
	j := r.find(jobid)
	if j == nil || !j.Status().Terminal() {
		return nil
	}
	return j.output
}

// Show writes one line per job: id, pgid, status, and the pipeline, all
// tab-separated.
func (r *Runner) Show(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for j := r.jobs; j != nil; j = j.next {
		if _, err := fmt.Fprintf(w, "%d\t%d\t%s\t", j.id, j.pgid, j.Status()); err != nil {
			return err
		}
		if err := syntax.Fprint(w, j.pipeline); err != nil {
			return err
		}
	}
	return nil
}

// Pause blocks until some job changes status (or Fini runs).
func (r *Runner) Pause() error {
	r.mu.Lock()
	ch := r.pauseCh
	r.mu.Unlock()
	if ch == nil {
		return fmt.Errorf("jobs: runner not initialized")
	}
	<-ch
	return nil
}

// broadcast wakes every Pause caller.
func (r *Runner) broadcast() {
	r.mu.Lock()
	if r.pauseCh != nil {
		close(r.pauseCh)
		r.pauseCh = make(chan struct{})
	}
	r.mu.Unlock()
}

// nextIDLocked assigns the next dense job id: max existing + 1, or 0.
func (r *Runner) nextIDLocked() int {
	id := 0
	for j := r.jobs; j != nil; j = j.next {
		if j.id >= id {
			id = j.id + 1
		}
	}
	return id
}

// find locates a job by id.
func (r *Runner) find(jobid int) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(jobid)
}

func (r *Runner) findLocked(jobid int) *Job {
	for j := r.jobs; j != nil; j = j.next {
		if j.id == jobid {
			return j
		}
	}
	return nil
}
