// Package security hashes passwords with bcrypt and issues, verifies and
// revokes the JWT access/refresh token pair.
package security
