package domain

import (
	"errors"
	"fmt"
	"time"
)

// PointsPerCorrectAnswer is added to the score for every correct verdict.
const PointsPerCorrectAnswer = 100

// Answer is the permanent verdict for one article.
type Answer struct {
	ArticleID  string    `json:"articleId"`
	WasCorrect bool      `json:"wasCorrect"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// ScoreState is the running score and streak.
type ScoreState struct {
	Score  int `json:"score"`
	Streak int `json:"streak"`
}

// Apply returns the score after one more verdict.
func (s ScoreState) Apply(wasCorrect bool) ScoreState {
	if wasCorrect {
		return ScoreState{Score: s.Score + PointsPerCorrectAnswer, Streak: s.Streak + 1}
	}
	return ScoreState{Score: s.Score, Streak: 0}
}

// Validate rejects a negative score or streak.
func (s ScoreState) Validate() error {
	if s.Score < 0 || s.Streak < 0 {
		return fmt.Errorf("negative score state %d/%d", s.Score, s.Streak)
	}
	return nil
}

// Validate checks that a recorded answer names its article.
func (a Answer) Validate() error {
	if a.ArticleID == "" {
		return errors.New("answer without article id")
	}
	return nil
}

// Stats summarizes the recorded answers.
type Stats struct {
	Answered  int
	Correct   int
	Incorrect int
}

// Accuracy is the share of correct answers in [0, 1].
func (s Stats) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered)
}
