// Package config handles loading, validating and watching the batnag
// configuration file.
package config
