package conflicts

// DefaultVenues is the bookable room list, in the order alternatives are offered.
var DefaultVenues = []string{
	"Concert Hall (Room 132)",
	"Comey Recital Hall (Room 142)",
	"Choral Rehearsal Room (Room 154)",
	"Instrumental Rehearsal Room (Room 116)",
	"Classroom (Room 217)",
	"Classroom (Room 228)",
	"Global Ensembles Room (Room 159)",
	"The Glenn Close Theatre",
	"Studio Theatre",
	"Laboratory Theatre",
}
