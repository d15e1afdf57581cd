//go:build unix

package jobs

import (
	"encoding/json"
	"os"
	"os/exec"
	"os/signal"
	"runtime/debug"
	"syscall"

	"golang.org/x/sys/unix"
)

// leaderEnv is the sentinel environment variable carrying the JSON-encoded
// stage manifest to a leader process.
const leaderEnv = "MUSH_LEADER_PIPELINE"

// manifest is the wire form of a pipeline handed to a leader. Arguments are
// already evaluated: the leader has no variable store.
type manifest struct {
	Stages     [][]string `json:"stages"`
	InputFile  string     `json:"input_file,omitempty"`
	OutputFile string     `json:"output_file,omitempty"`
	Capture    bool       `json:"capture,omitempty"`
}

func (m manifest) encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MaybeRunLeader turns the current process into a pipeline leader when the
// leader sentinel is present in the environment. main (and TestMain) must
// call it before doing anything else; when the sentinel is set the call
// never returns.
func MaybeRunLeader() {
	spec := os.Getenv(leaderEnv)
	if spec == "" {
		return
	}
	leaderMain(spec)
}

// leaderMain implements the leader protocol: join a fresh process group,
// wire the stage pipe chain and redirections, reap every stage, and
// propagate the last stage's fate. Never returns.
func leaderMain(spec string) {
	var m manifest
	if err := json.Unmarshal([]byte(spec), &m); err != nil || len(m.Stages) == 0 {
		leaderFail()
	}

	// The parent already placed us in our own group via Setpgid; repeat
	// defensively so a directly-invoked leader still owns its group.
	_ = unix.Setpgid(0, 0)

	prevIn := os.Stdin
	if m.InputFile != "" {
		f, err := os.Open(m.InputFile)
		if err != nil {
			leaderFail()
		}
		prevIn = f
	}

	stages := make([]*exec.Cmd, 0, len(m.Stages))
	for i, argv := range m.Stages {
		if len(argv) == 0 {
			leaderFail()
		}
		stage := exec.Command(argv[0], argv[1:]...)
		stage.Stdin = prevIn
		stage.Stderr = os.Stderr

		last := i == len(m.Stages)-1
		var pipeR, pipeW, outFile *os.File
		if !last {
			var err error
			pipeR, pipeW, err = os.Pipe()
			if err != nil {
				leaderFail()
			}
			stage.Stdout = pipeW
		} else if m.OutputFile != "" && !m.Capture {
			f, err := os.OpenFile(m.OutputFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				leaderFail()
			}
			outFile = f
			stage.Stdout = f
		} else {
			// In the capture case our stdout is already the capture pipe.
			stage.Stdout = os.Stdout
		}

		if err := stage.Start(); err != nil {
			leaderFail()
		}

		// Close our copies of the stage's endpoints so EOFs propagate.
		if prevIn != os.Stdin {
			prevIn.Close()
		}
		if outFile != nil {
			outFile.Close()
		}
		if pipeW != nil {
			pipeW.Close()
			prevIn = pipeR
		}
		stages = append(stages, stage)
	}

	var lastState *os.ProcessState
	for _, stage := range stages {
		_ = stage.Wait()
		lastState = stage.ProcessState
	}

	ws, _ := lastState.Sys().(syscall.WaitStatus)
	if ws.Signaled() {
		// Propagate the stage's violent death as our own. With tracebacks
		// set to crash, an unrecovered panic makes the runtime raise
		// SIGABRT on this thread with the default action, so the leader
		// dies by SIGABRT.
		debug.SetTraceback("crash")
		signal.Reset(syscall.SIGABRT)
		panic("mush: last pipeline stage died by a signal")
	}
	os.Exit(ws.ExitStatus())
}

// leaderFail terminates the whole job on an unrecoverable OS failure: the
// process group is killed (the leader included), falling back to an abort.
func leaderFail() {
	signal.Reset(syscall.SIGABRT)
	_ = unix.Kill(-os.Getpid(), unix.SIGKILL)
	_ = unix.Kill(os.Getpid(), unix.SIGABRT)
	os.Exit(1)
}
