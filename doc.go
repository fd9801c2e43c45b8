// Package backend is the PuffBuddy API server and its tooling.
//
// Commands:
//   - cmd/server: HTTP and websocket API
//   - cmd/migrate: schema migrations and search reindexing
//   - cmd/seed: development and catalog data
//   - cmd/puffctl: terminal client for the API
//
// The API is organized into subpackages under internal/: handlers for the
// HTTP surface, models and database for persistence, auth for accounts and
// tokens, stats for totals and streaks, websocket for realtime events, and
// cache, search and storage for the optional Redis, Elasticsearch and S3
// backends.
package backend
