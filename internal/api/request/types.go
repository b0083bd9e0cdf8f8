package request

// SpectateRequest is the request body for POST /spectate
type SpectateRequest struct {
	ObserverID   string `json:"observer_id"`
	ObserverName string `json:"observer_name"`
	TargetID     string `json:"target_id"`
}

// CommandRequest is the request body for sending an order to a player
type CommandRequest struct {
	Order string `json:"order"`
}

// IgnoreTimeRequest is the request body for hiding or restoring a time
type IgnoreTimeRequest struct {
	Ignored *bool `json:"ignored"`
}
