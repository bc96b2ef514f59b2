// Package api exposes the todo services over HTTP with gin.
package api
