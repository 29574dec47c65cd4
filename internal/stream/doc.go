// Package stream pushes deployment events to websocket subscribers.
//
// A Hub fans every event out to the subscribers of the "all deployments"
// topic and to the subscribers of the deployment's own topic. The Hub is an
// events.EventHandler, so registering it on the emitter is all the wiring the
// lifecycle engine and services need.
package stream
