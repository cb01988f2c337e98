// Package config provides configuration structures and utilities for docpull.
// It defines the crawl, download, and persistence options, their documented
// defaults, validation, and the YAML configuration file loader.
package config
