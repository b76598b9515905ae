// Package parser reads the ordered list of changed package names handed to
// monopub by the change-detection step. Lists may come as JSON, YAML, TOML or
// plain newline-separated text.
package parser
