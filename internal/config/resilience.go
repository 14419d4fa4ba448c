package config

import (
	"time"

	"gdxsv_chatops/internal/retry"
)

type ResilienceConfig struct {
	SheetRead     retry.Config
	ReloadRequest retry.Config
	Notification  retry.Config
}

var DefaultResilienceConfig = ResilienceConfig{
	SheetRead: retry.Config{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    30 * time.Second,
	},
	ReloadRequest: retry.Config{
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   5 * time.Second,
		Timeout:    10 * time.Second,
	},
	Notification: retry.Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    10 * time.Second,
	},
}

// PatientResilienceConfig keeps retrying the spreadsheet download until the
// caller gives up, for unattended runs.
var PatientResilienceConfig = ResilienceConfig{
	SheetRead: retry.Config{
		BaseDelay:     5 * time.Second,
		MaxDelay:      60 * time.Second,
		Timeout:       30 * time.Second,
		InfiniteRetry: true,
	},
	ReloadRequest: DefaultResilienceConfig.ReloadRequest,
	Notification:  DefaultResilienceConfig.Notification,
}
