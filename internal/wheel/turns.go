package wheel

import (
	"time"

	"github.com/hamsterlabs/cryptohamster/internal/database"
)

// CountTurns counts genuine wheel turns over a closed decision interval.
// Only active samples (magnet passes) are candidates; a pass closer than
// deadTime to the previously counted one is sensor bounce on the same
// physical rotation and collapses into it.
func CountTurns(readings []database.Reading, deadTime time.Duration) uint32 {
	var turns uint32
	var last time.Time
	for _, r := range readings {
		if !r.Active {
			continue
		}
		if turns > 0 && r.Time.Sub(last) <= deadTime {
			continue
		}
		turns++
		last = r.Time
	}
	return turns
}
