// Command ps2id identifies PlayStation 2 disc images.
//
// Subcommands identify individual files, walk directories with a bounded
// worker pool, watch a directory for new dumps, and inspect the region
// databases. Configuration is read from ~/.config/ps2id/config.toml unless
// --config points elsewhere; a .env file in the working directory is loaded
// before configuration so environment overrides can live next to the images.
package main
