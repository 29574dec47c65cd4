// Package domain contains the core entities of the dashboard: infrastructure
// tasks, deployments and the deployment state machine. It is independent of
// any storage or delivery mechanism.
package domain
