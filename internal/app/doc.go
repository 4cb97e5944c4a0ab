// Package app is the composition root for galley.
//
// # Overview
//
// Run wires configuration, logging, persisted storage, the API client, the
// session store and the photo resolver together and hands them to the UI.
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()          Read config.toml, .env and env vars
//	       ├─────> openLogger()           slog text handler on galley.log
//	       ├─────> storage.Open()         SQLite key/value store (token, user)
//	       ├─────> api.NewClient()        Anonymous client (login, register)
//	       ├─────> session.New()          Session store over storage
//	       ├─────> WithCredentials()      Authenticated client for everything else
//	       └─────> ui.Run()               Start TUI (blocks)
//
// # Session Expiry
//
// Nothing polls the session. The backend reports an expired token with a 401,
// the API client forwards the token it sent to the session store, and the
// store expires the session only if that token is still the current one. The
// UI hears about it on the session's event channel.
//
// # Error Handling
//
// Configuration, log file, storage and client construction failures are
// returned from Run. Everything after the UI starts is reported in the UI and
// logged.
package app
