// Package config loads galley's configuration.
//
// # Resolution
//
// Load reads ~/.config/galley/config.toml unless a path is given. A missing
// file is not an error; every field has a default. Before the file is read a
// .env file in the working directory is loaded with godotenv, so environment
// overrides can live next to a checkout.
//
// # Fields
//
//   - api_url: backend root, default http://localhost:6969/api (env GALLEY_API_URL)
//   - data_dir: default ~/.local/share/galley
//   - log_level: debug, info, warn or error, default info (env GALLEY_LOG_LEVEL)
//   - request_timeout: Go duration, default 10s
//
// # Derived paths
//
// The data dir holds storage.db (the persisted session), galley.log and the
// exports/ directory. See StoragePath, LogPath and ExportDir.
package config
