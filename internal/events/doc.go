// Package events provides types and interfaces for deployment lifecycle events.
//
// The lifecycle engine and the deployment service emit an event for every
// status change without knowing who consumes it. Handlers registered with the
// emitter turn events into Prometheus counters and websocket broadcasts.
//
// The primary components are:
// - DeploymentEvent: a deployment was created or changed status
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
