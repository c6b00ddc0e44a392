// Package confloader provides configuration loading for respkv.
//
// Configuration is read with koanf from up to three sources, later ones
// winning:
//
//  1. a YAML file
//  2. RESPKV_* environment variables, "__" separating nesting levels
//  3. explicit overrides, usually command-line flags
//
// Keys absent from every source keep the value already present in the
// target struct, so callers unmarshal into a struct holding the defaults.
//
// Watcher reports edits of the configuration file through fsnotify so the
// server can reload settings that are safe to change at runtime.
package confloader
