// Package config provides the configuration of a search run: the options
// collected from command line flags, their defaults, validation, and the
// optional YAML configuration file whose defaults apply under the flags.
package config
