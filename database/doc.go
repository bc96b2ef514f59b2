// Package database manages the bun connection (mysql, postgres, sqlite),
// versioned migrations, foreign key constraints, health checks, query hooks
// and SQL error classification for the TODO service.
package database
