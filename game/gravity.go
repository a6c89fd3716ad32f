package game

import "time"

const (
	MaxLevel = 10

	// AnimationInterval is the hard drop cadence, independent of level.
	AnimationInterval = 5 * time.Millisecond

	// AnimationStep is how far a hard dropping piece moves per frame.
	AnimationStep = 0.5
)

// points per number of lines cleared by a single lock
var points = [4]int{40, 100, 300, 1200}

func LevelFor(lines int) int {
	return min(MaxLevel, 1+lines/10)
}

func PointsFor(level, completed int) int {
	if completed <= 0 {
		return 0
	}
	completed = min(completed, len(points))
	return (level + 1) * points[completed-1]
}

// DropInterval is the gravity period: 500ms at level 1 down to 50ms at
// level 10.
func DropInterval(level int) time.Duration {
	level = max(1, min(MaxLevel, level))
	return time.Duration(11-level) * 50 * time.Millisecond
}
