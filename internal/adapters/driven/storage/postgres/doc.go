// Package postgres provides a PostgreSQL ConversationStore for deployments where
// several studyhall processes share one chat log.
//
// Connections are pooled with pgxpool. The table is created on Open if it does
// not exist.
package postgres
