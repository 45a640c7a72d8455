package coord

// State is where a photo's bytes stand.
//
//	Unhydrated -> Hydrating -> Hydrated
//	                        -> HydrationFailed -> Hydrating (on request)
type State int

const (
	Unhydrated State = iota
	Hydrating
	Hydrated
	HydrationFailed
)

func (s State) String() string {
	switch s {
	case Unhydrated:
		return "unhydrated"
	case Hydrating:
		return "hydrating"
	case Hydrated:
		return "hydrated"
	case HydrationFailed:
		return "failed"
	default:
		return "unknown"
	}
}
