// Command autograder registers the team with the ECE 461 autograder,
// schedules a grading run, and saves the latest result and its log.
package main

import "autograder/internal/cli"

func main() {
	cli.Execute()
}
