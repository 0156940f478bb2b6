// Package config provides configuration structures and utilities for navscout.
// It defines the crawl budget, retry policy, browser settings, and report
// preferences, plus loading of the optional YAML configuration file.
package config
