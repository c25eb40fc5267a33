// Package schedule runs the recurring maintenance jobs of the host, starting
// with the subscription expiry sweeper. Jobs are driven by robfig/cron and
// report their work through the domain-event dispatcher rather than touching
// stores directly, keeping the schedule layer free of business logic.
package schedule
