package config

import "os"

func IsDebug() bool {
	return os.Getenv("RELAY_DEBUG") == "1"
}

func IsJSONLog() bool {
	return os.Getenv("RELAY_LOG_JSON") == "1"
}
