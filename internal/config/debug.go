package config

import "os"

func IsDebug() bool {
	return os.Getenv("POLYCHAT_DEBUG") == "1"
}

// GetRuntimePath resolves the runtime directory before config structs are
// parsed, so the .env file inside it can be loaded first.
func GetRuntimePath() string {
	if p := os.Getenv("POLYCHAT_RUNTIME_PATH"); p != "" {
		return p
	}
	return ".polychat"
}
