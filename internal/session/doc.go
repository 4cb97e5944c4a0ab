// Package session holds the signed-in identity and keeps it in step with
// persisted storage.
//
// A Store starts out initializing. Hydrate restores the token and user saved
// by an earlier run and ends initialization exactly once. Login persists
// before it publishes, so a crash between the two never leaves memory ahead of
// storage. Rejected implements reactive invalidation: the API client reports
// every 401 along with the token the request carried, and only a rejection of
// the current token logs the user out.
package session
