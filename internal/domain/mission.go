package domain

// KmToMiles converts kilometres to statute miles.
const KmToMiles = 0.621371

// Mission is the work item handed to an actor together with its opening line.
type Mission struct {
	Item         WorkItem
	OpeningLine  string
	Fallback     bool
	DistanceKm   float64
	DistanceMile float64
}

// Assignment is the dispatch result. NoneAvailable is set instead of an error
// when the pending pool is empty.
type Assignment struct {
	Mission       *Mission
	NoneAvailable bool
	Message       string
}
