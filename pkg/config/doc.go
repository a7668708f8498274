// Package config loads packweaver settings.
//
// Settings are layered with koanf: embedded defaults, then an optional
// packweaver.toml (explicit path or the content root), then PACKWEAVER_*
// environment variables. Nested keys use a double underscore in the
// environment, so PACKWEAVER_ENGINE__COMPANION_THRESHOLD sets
// engine.companion_threshold.
package config
