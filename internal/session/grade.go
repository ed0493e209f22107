package session

// Tier is a rung of the grade ladder.
type Tier struct {
	Grade       string
	Label       string
	MinAccuracy int
	MinWPM      int
}

// Achievement is a rung of the speed ladder shown on the results screen.
type Achievement struct {
	MinWPM  int
	Icon    string
	Message string
}

// Ordered best first; the first rung whose thresholds are met wins.
var tiers = []Tier{
	{Grade: "A+", Label: "Outstanding!", MinAccuracy: 95, MinWPM: 60},
	{Grade: "A", Label: "Excellent Work!", MinAccuracy: 90, MinWPM: 50},
	{Grade: "B+", Label: "Great Job!", MinAccuracy: 85, MinWPM: 40},
	{Grade: "B", Label: "Good Effort!", MinAccuracy: 80, MinWPM: 35},
	{Grade: "C+", Label: "Good Effort!", MinAccuracy: 75, MinWPM: 0},
}

var defaultTier = Tier{Grade: "C", Label: "Keep Practicing!"}

var achievements = []Achievement{
	{MinWPM: 60, Icon: "🎉", Message: "Phenomenal skills!"},
	{MinWPM: 50, Icon: "🎊", Message: "You're on fire!"},
	{MinWPM: 40, Icon: "🌟", Message: "Brilliant work!"},
	{MinWPM: 30, Icon: "⚡", Message: "You're a typing master!"},
	{MinWPM: 20, Icon: "🔥", Message: "Outstanding performance!"},
	{MinWPM: 15, Icon: "💎", Message: "You're unstoppable!"},
	{MinWPM: 10, Icon: "🏆", Message: "Incredible accuracy!"},
	{MinWPM: 5, Icon: "⭐", Message: "You're a speed demon!"},
}

var defaultAchievement = Achievement{Icon: "🚀", Message: "Fantastic typing skills!"}

// GradeFor maps accuracy and WPM to a grade tier.
func GradeFor(accuracy, wpm int) Tier {
	for _, t := range tiers {
		if accuracy >= t.MinAccuracy && wpm >= t.MinWPM {
			return t
		}
	}
	return defaultTier
}

// Tiers returns the grade ladder best first, including the default rung.
func Tiers() []Tier {
	out := append([]Tier(nil), tiers...)
	return append(out, defaultTier)
}

// AchievementFor maps WPM to an achievement.
func AchievementFor(wpm int) Achievement {
	for _, a := range achievements {
		if wpm >= a.MinWPM {
			return a
		}
	}
	return defaultAchievement
}

var motivations = []string{
	"You've got this! Focus and type fast!",
	"Amazing! Keep up the great work!",
	"You're doing fantastic! Don't stop!",
	"Incredible speed! You're on fire!",
	"Outstanding! You're a typing master!",
	"Brilliant! Keep that momentum going!",
	"Excellent! You're unstoppable!",
	"Phenomenal! You're breaking records!",
	"Spectacular! You're a typing legend!",
	"Magnificent! You're absolutely crushing it!",
}
