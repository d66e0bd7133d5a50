// Package file persists noteseek configuration as a TOML file and resolves
// it into typed Settings with defaults applied.
package file
