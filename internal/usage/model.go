package usage

import "time"

// Kind identifies a metered operation.
type Kind string

const (
	KindAnalysis    Kind = "analysis"
	KindEnhancement Kind = "enhancement"
)

// Meter tracks consumption of one operation kind within the current period.
type Meter struct {
	Limit int `json:"limit"`
	Used  int `json:"used"`
}

// Remaining reports how many units are left in the period.
func (m Meter) Remaining() int {
	if m.Used >= m.Limit {
		return 0
	}
	return m.Limit - m.Used
}

// Usage is a user's plan consumption snapshot for the current period.
type Usage struct {
	Plan         string    `json:"plan"`
	Analyses     Meter     `json:"analyses"`
	Enhancements Meter     `json:"enhancements"`
	ResetsAt     time.Time `json:"resetsAt"`
}

func (u Usage) meter(kind Kind) Meter {
	if kind == KindEnhancement {
		return u.Enhancements
	}
	return u.Analyses
}

func (u *Usage) addUsed(kind Kind, n int) {
	if kind == KindEnhancement {
		u.Enhancements.Used += n
		return
	}
	u.Analyses.Used += n
}
