package routing

// Event routes published to UI surfaces
const (
	// Player data poller
	PlayerDataUpdate = "playerdata_update"

	// Window tracker
	OverlayShow     = "show"
	OverlayHide     = "hide"
	OverlayGeometry = "geometry"

	// Config
	PreferencesUpdate = "preferences_update"
	ProfilesUpdate    = "profiles_update"
)
