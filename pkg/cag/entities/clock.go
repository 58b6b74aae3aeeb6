package entities

import "time"

// timeNow wraps a single timestamp so extraction helpers agree on "now"
// for a whole ExtractEntities call instead of drifting between FirstSeen
// and LastSeen on slow inputs.
type timeNow struct{ t time.Time }

func nowUTC() timeNow { return timeNow{t: time.Now().UTC()} }
