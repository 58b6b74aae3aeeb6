package contextanalyzer

import "time"

// nowTopics gives topic timestamps a single source so a batch of topics
// extracted from one message share identical FirstSeen/LastSeen values.
func nowTopics() time.Time {
	return time.Now().UTC()
}
