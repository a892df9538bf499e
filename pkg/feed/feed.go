package feed

// Feed is a configured source of events: either a remote ICS subscription
// (SourceURL set) or an owned calendar curated by hand (SourceURL empty).
// Owned is derived once at creation time and never changes afterwards.
type Feed struct {
	ID        int
	Name      string
	SourceURL string
	Owned     bool
}
