// Package lifecycle drives deployments through their simulated pipeline.
//
// An Engine owns one handle per running deployment, keyed by deployment ID.
// Each handle runs a sequence goroutine that waits the configured build
// duration, moves the deployment from building to deploying, waits the deploy
// duration and moves it to success. Every write is a compare-and-set in the
// store, so a deployment cancelled in the meantime is never advanced.
package lifecycle
