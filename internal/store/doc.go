// Package store defines interfaces for task and deployment persistence.
// These interfaces abstract the underlying database from the services and
// the lifecycle engine, so both can be exercised against in-memory fakes.
package store
