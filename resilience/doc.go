// Package resilience provides retry and polling combinators for calls to
// external services.
//
// Retry re-runs a failing call with exponential backoff and is used by the
// HTTP client for search submission. Poll checks the state of an asynchronous
// job at a fixed interval until it reaches a terminal status or the
// attempt budget runs out:
//
//	text, err := resilience.Poll(ctx, resilience.DefaultPollConfig(),
//	    func(ctx context.Context, attempt int) (string, bool, error) {
//	        job, err := api.Status(ctx, id)
//	        if err != nil {
//	            return "", false, err
//	        }
//	        return job.Text, job.Done, nil
//	    })
package resilience
