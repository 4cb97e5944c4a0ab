// Package api is the HTTP client for the recipes backend.
//
// A Client built with NewClient is anonymous. WithCredentials returns a copy
// that attaches a bearer token on every request and reports 401 responses
// back to the credential holder together with the token the request carried,
// so a stale rejection cannot end a newer session.
//
// Recipe endpoints return recipe.Backend values: raw JSON objects that the
// recipe package normalises. Writes are multipart forms built from a
// recipe.Submission; the photo intent decides which of the photo and
// photoUrl fields is sent.
//
// Errors for non-2xx statuses are *Error values carrying the backend's
// message when it sent one. Use Message to pick a user-facing string.
package api
