package stem

// Cruise controls how AutoCruise bucks a stem into logs
type Cruise struct {
	// PreferredLength is the log length (ft) taken whenever it fits below merch height
	PreferredLength int `json:"preferred_length" yaml:"preferred_length"`
	// MinimumLength is the shortest final log (ft) worth adding
	MinimumLength int `json:"minimum_length" yaml:"minimum_length"`
	// UtilityDIB is the smallest top DIB (in) a final utility log may reach
	UtilityDIB int `json:"utility_dib" yaml:"utility_dib"`
}

// DefaultCruise uses industry-standard 40 ft preferred logs, 16 ft minimum
// logs and a 3 in utility top
var DefaultCruise = Cruise{PreferredLength: 40, MinimumLength: 16, UtilityDIB: 3}

// stumpHeight is where the first log starts
const stumpHeight = 1

// maxCruiseLogs bounds the bucking loop
const maxCruiseLogs = 999

// AutoCruise replaces the stem's logs with a virtual cruise. Logs are cut
// at the preferred length up to merch height, leaving 1 ft of trim between
// logs. Once a minimum-length log no longer fits below merch height, one
// last log is taken up to the utility DIB if it is at least the minimum
// length. Log lengths are rounded down to an even number of feet.
func (s *Stem) AutoCruise(c Cruise) error {
	heights := s.cruiseHeights(c)

	s.Logs = []Log{}
	s.sumVolumes()
	for i := 1; i < len(heights); i++ {
		length := (heights[i] - heights[i-1]) / 2 * 2
		if err := s.AddLog(heights[i], length, "", 0); err != nil {
			return err
		}
	}
	s.Cruise = &c
	return nil
}

// cruiseHeights returns the stump height followed by the top of each log
func (s *Stem) cruiseHeights(c Cruise) []int {
	heights := []int{stumpHeight}
	for i := 0; i < maxCruiseLogs; i++ {
		next, done := s.nextLogTop(heights[i], c)
		if next > 0 {
			heights = append(heights, next)
		}
		if done {
			break
		}
	}
	return heights
}

// nextLogTop returns the top of the log starting above previous, or 0 when
// no log fits. done reports that bucking is finished.
func (s *Stem) nextLogTop(previous int, c Cruise) (next int, done bool) {
	if previous+c.MinimumLength+1 > s.MerchHeight-2 {
		utility, ok := s.utilityHeight(c.UtilityDIB)
		if ok && utility-previous-1 >= c.MinimumLength {
			return utility, true
		}
		return 0, true
	}
	if previous+1+c.PreferredLength <= s.MerchHeight {
		return previous + c.PreferredLength + 1, false
	}
	return s.MerchHeight, false
}

// utilityHeight is the highest stem height at the utility DIB, falling back
// to one inch larger when no height has exactly that DIB
func (s *Stem) utilityHeight(dib int) (int, bool) {
	for _, d := range []int{dib, dib + 1} {
		if heights := s.Buckets[d]; len(heights) > 0 {
			return heights[len(heights)-1], true
		}
	}
	return 0, false
}
