// Package config manages videohub-cfg's user configuration.
//
// Two layers are kept apart:
//
//   - Registry: a YAML file of named hubs and preferences, stored in the
//     OS configuration directory and written atomically.
//   - Settings: the effective runtime values for one command, resolved
//     with viper from flags, VIDEOHUB_* environment variables, the
//     registry and built-in defaults, in that order.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/videohub/config.yaml or $HOME/.config/videohub/config.yaml
//   - macOS: $HOME/.config/videohub/config.yaml
//   - Windows: %LOCALAPPDATA%\videohub\config.yaml
//
// VIDEOHUB_CONFIG_DIR overrides the directory.
//
// # Example
//
//	version: 1
//	hubs:
//	  studio-a:
//	    host: 192.168.1.248
//	    port: 9990
//	    nickname: Studio A router
//	preferences:
//	  default_hub: studio-a
//	  preset_dir: /srv/videohub/presets
//	  strict_parsing: false
//	  fetch_timeout: 500ms
package config
