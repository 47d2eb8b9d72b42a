package journal

// DefaultLearningEvery 每累積幾筆評價重新學習一次偏好
const DefaultLearningEvery = 5

// Cadence 決定何時觸發偏好學習
type Cadence struct {
	Every int
}

// ShouldTrigger 已評價筆數為 Every 的正整數倍時成立
func (c Cadence) ShouldTrigger(h History) bool {
	every := c.Every
	if every <= 0 {
		every = DefaultLearningEvery
	}
	n := h.RatedCount()
	return n > 0 && n%every == 0
}
