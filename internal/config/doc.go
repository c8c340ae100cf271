// Package config handles configuration loading for edgecall.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion, or built from EDGECALL_* variables when no file exists.
// Defaults are applied before validation.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from EDGECALL_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/edgecall/config.yaml
//  3. ~/.config/edgecall/config.yaml
//
// Files ending in .toml are parsed as TOML; anything else is YAML.
//
// # Environment Variable Expansion
//
//	api:
//	  anon_key: "${EDGECALL_ANON_KEY}"
//
// # Configuration Sections
//
// Remote location:
//
//	api:
//	  base_url: "https://project.example.co"   # required, http or https
//	  anon_key: "public-anon-key"              # required
//	  functions_path: "functions/v1"           # default
//	  request_timeout: "30s"                   # default: none
//	  user_agent: "edgecall/1.0"
//
// Credentials, tried in this order:
//
//	auth:
//	  token: ""                                # static bearer
//	  token_env: "EDGECALL_TOKEN"              # default
//	  token_file: "~/.config/edgecall/token"
//	  session_db: "~/.local/share/edgecall/session.db"
//
// Push streams:
//
//	streams:
//	  notifications_endpoint: "notifications-stream"
//	  dedupe_ttl: "10m"
//	  dedupe_size: 1024
//
// Logging:
//
//	logging:
//	  level: "info"    # debug, info, warn, error
//	  format: "text"   # text, json
package config
