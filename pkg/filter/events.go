package filter

// EventRaritiesApplied is broadcast after a filter's tier mapping has been
// applied to a league.
const EventRaritiesApplied = "filter:rarities-applied"

// RaritiesAppliedEvent is the payload of EventRaritiesApplied.
type RaritiesAppliedEvent struct {
	FilterID   string `json:"filterId"`
	FilterName string `json:"filterName"`
	Game       string `json:"game"`
	League     string `json:"league"`
	TotalCards int    `json:"totalCards"`
}
