// Package service holds the application logic of the TODO backend: account
// sign-up and token handling, and ownership-checked management of todo
// repositories, daily todos and tasks.
package service
