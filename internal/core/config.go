package core

import "time"

type ProviderConfig interface {
	GetProvider() string
	GetModel() string
	GetAPIKey() string
	GetBaseURL() string
	GetTimeout() time.Duration
}

type PromptConfig interface {
	GetSystemPath() string
	GetSystemPrompt() string
}
