package marketdata

import (
	"sort"
	"time"
)

// Sentiment classifies a news headline.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// recentWindow is how many of the newest items decide the recent sentiment.
const recentWindow = 3

// NewsItem is one headline about a fund.
type NewsItem struct {
	Date      time.Time `json:"date"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Sentiment Sentiment `json:"sentiment"`
}

// NewsAnalysis condenses a news list into the two scoring inputs.
type NewsAnalysis struct {
	SentimentScore  float64 `json:"sentiment_score"`  // (positive - negative) / total
	RecentSentiment float64 `json:"recent_sentiment"` // +1, 0 or -1
	Count           int     `json:"count"`
}

// AnalyzeNews scores a news list. An empty list is neutral.
func AnalyzeNews(items []NewsItem) NewsAnalysis {
	if len(items) == 0 {
		return NewsAnalysis{}
	}

	sorted := make([]NewsItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	var pos, neg int
	for _, item := range sorted {
		switch item.Sentiment {
		case SentimentPositive:
			pos++
		case SentimentNegative:
			neg++
		}
	}

	var recentPos, recentNeg int
	for i := 0; i < len(sorted) && i < recentWindow; i++ {
		switch sorted[i].Sentiment {
		case SentimentPositive:
			recentPos++
		case SentimentNegative:
			recentNeg++
		}
	}

	recent := 0.0
	switch {
	case recentPos > recentNeg:
		recent = 1
	case recentNeg > recentPos:
		recent = -1
	}

	return NewsAnalysis{
		SentimentScore:  float64(pos-neg) / float64(len(sorted)),
		RecentSentiment: recent,
		Count:           len(sorted),
	}
}
