package bungie

const (
	Success                      = 1
	UnhandledException           = 3    // Transient error
	SystemDisabled               = 5    // System is currently disabled
	ParameterInvalidRange        = 8    // Parameter outside valid range (e.g., invalid membership ID)
	InvalidParameters            = 18   // Invalid input parameters
	ThrottleLimitExceeded        = 51   // Too many requests for this key
	DestinyAccountNotFound       = 1601 // Account not found
	DestinyPrivacyRestriction    = 1665 // Privated resource
	DestinyThrottledByGameServer = 1672 // Throttled by game server (expected throttling)
)
