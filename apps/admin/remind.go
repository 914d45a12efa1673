package main

import "context"

// remind runs a single reminder scan, for cron-style deployments that
// prefer an external scheduler over the built-in one.
func (cli *commandLine) remind() error {
	return cli.engine.CheckUpcomingMeetings(context.Background())
}
