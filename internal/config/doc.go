// Package config defines the packaging settings for a release run and provides
// helpers to load, validate and save them in YAML format.
//
// Every field has a working default, so running without a config file packages
// the application from its standard project layout. Validate fills defaults in
// place and rejects directory settings that could escape the project root.
package config
