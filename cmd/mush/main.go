//go:build unix

package main

import "github.com/tgrossb/mush/jobs"

func main() {
	// A leader invocation never reaches the CLI.
	jobs.MaybeRunLeader()
	execute()
}
