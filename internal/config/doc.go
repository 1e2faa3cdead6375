// Package config handles configuration loading for coven-mailstore.
//
// Configuration is YAML with ${VAR_NAME} environment expansion:
//
//	storage:
//	  data_dir: "${MAILSTORE_DATA}"  # empty falls back to "data"
//	pages:
//	  inbox: 10
//	  thread: 20
//	  audit: 20
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// Every field has a default, so an empty file (or Default()) yields a
// working configuration. Load validates page sizes and logging values and
// rejects anything unusable.
package config
