// Package authsdk provides a Go client for the identity service along with
// the request/response types and typed API errors shared between the server
// handlers and client code. Keeping both sides on the same types means the
// error catalog lives in exactly one place.
package authsdk
