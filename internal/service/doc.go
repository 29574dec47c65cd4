// Package service contains the application-specific use cases. It
// orchestrates domain objects, the stores defined in internal/store and the
// lifecycle engine to fulfill the task and deployment operations exposed by
// the HTTP API.
//
// Services receive their dependencies through constructor injection and
// depend only on interfaces, never on the PostgreSQL implementation. Store
// sentinel errors are translated into service sentinels that the API layer
// maps to HTTP status codes.
package service
