// Package jobs provides scheduled background tasks for the pickup service.
//
// Jobs are cron-based (github.com/robfig/cron/v3, seconds field enabled).
//
// # Available Jobs
//
// 1. AppointmentExpiryJob - marks lapsed appointments no_show, releases their
// units and records penalties
// 2. PenaltyPurgeJob - deletes penalties older than their 24 hour lifetime
//
// # Usage
//
//	jobManager, err := jobs.NewJobManager(jobs.Schedules{
//		Expiry:       "0 */5 * * * *",
//		PenaltyPurge: "0 0 * * * *",
//	}, expireHandler, purgeHandler, logger)
//	if err != nil {
//		return err
//	}
//	jobManager.StartAll()
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failing run is logged and counted; the next tick retries. Runs never
// overlap: a tick that fires while the previous run is still busy is skipped.
package jobs
