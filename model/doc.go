// Package model declares the bun models of the TODO service: users, todo
// repositories, daily todos and their tasks. Each model registers itself with
// the database model registry so the base migration creates its table.
package model
