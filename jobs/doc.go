// Package jobs runs external pipeline jobs and tracks their lifecycle.
//
// # Model
//
// Each job is a pipeline of commands executed by a leader process: a re-exec
// of the current binary in a hidden leader mode. The leader establishes its
// own process group, wires the stage pipe chain and redirections, reaps its
// stages, and propagates the last stage's fate — exiting with its status, or
// raising SIGABRT on itself when the stage died by a signal.
//
// The parent tracks one Job record per leader. A job is RUNNING from the
// moment Run returns until the leader is reaped, then exactly one of
// COMPLETED (leader exited), CANCELED (leader died by SIGKILL after Cancel),
// or ABORTED (any other signal). Transitions are one-shot and monotonic;
// only terminal jobs can be expunged.
//
// # Leader bootstrap
//
// main must call MaybeRunLeader before doing anything else; when the leader
// environment sentinel is present the call never returns. Test binaries do
// the same from TestMain.
//
// # Concurrency
//
// One goroutine per job observes the leader's wait status and performs the
// status transition; everything else runs on the caller's goroutine under
// the runner's lock. Job status is atomic so Poll never blocks. The runner's
// methods are intended for a single controlling goroutine, matching the
// process model of the shell it serves.
//
// Setting MUSH_LOG_JOBS in the environment enables job diagnostics on
// stderr.
package jobs
