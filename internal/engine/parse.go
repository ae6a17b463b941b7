package engine

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
)

// firstPoseRe matches the first row of the engine's pose table: the rank
// marker "1" followed by a signed decimal affinity. This is the single
// accepted format; older scripts parsed the log several different ways.
var firstPoseRe = regexp.MustCompile(`^\s*1\s+(-?\d+(?:\.\d+)?)`)

// ParseScore extracts the first reported pose's score from the engine log.
// Returns ErrNoScore when no matching line exists or the token does not
// parse as a decimal number.
func ParseScore(r io.Reader) (float64, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := firstPoseRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		score, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, ErrNoScore
		}
		return score, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, ErrNoScore
}
