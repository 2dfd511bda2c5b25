// Command bandhub runs the band collaboration API and its maintenance
// tasks.
//
// Usage:
//
//	bandhub serve            run the HTTP and websocket server
//	bandhub migrate          create the database schema
//	bandhub config validate  load and check the configuration
//	bandhub config show      print the effective configuration as TOML
//	bandhub peaks FILE       print the duration and waveform peaks of an audio file
package main
