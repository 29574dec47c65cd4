// Package postgres provides PostgreSQL-specific implementations of the
// task and deployment stores defined in the internal/store package. It also
// owns the schema: migrations are embedded into the binary and applied with
// goose.
package postgres
