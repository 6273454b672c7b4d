package dto

import (
	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/insights"
	"github.com/proup-app/proup-api/internal/domain/retrospective"
)

// RetrospectiveQuery holds the query string of GET /api/retrospective/data.
// Dates are checked by the handler so that every date problem maps to 400
// with the same message.
type RetrospectiveQuery struct {
	From      string `form:"from"`
	To        string `form:"to"`
	ProjectID string `form:"projectId" validate:"omitempty,uuid"`
}

type MoodEntryRequest struct {
	Date  string `json:"date" validate:"required,date"`
	Score int    `json:"score" validate:"min=1,max=5"`
}

type FocusSessionRequest struct {
	Date    string `json:"date" validate:"required,date"`
	Minutes int    `json:"minutes" validate:"min=0,max=1440"`
}

// InsightsRequest is the body of POST /api/retrospective/insights.
type InsightsRequest struct {
	From          string                `json:"from"`
	To            string                `json:"to"`
	ProjectID     *uuid.UUID            `json:"projectId,omitempty"`
	Moods         []MoodEntryRequest    `json:"moods" validate:"max=366,dive"`
	FocusSessions []FocusSessionRequest `json:"focusSessions" validate:"max=10000,dive"`
}

func (r InsightsRequest) MoodEntries() []insights.MoodEntry {
	out := make([]insights.MoodEntry, 0, len(r.Moods))
	for _, m := range r.Moods {
		out = append(out, insights.MoodEntry{Date: m.Date, Score: m.Score})
	}
	return out
}

func (r InsightsRequest) Sessions() []insights.FocusSession {
	out := make([]insights.FocusSession, 0, len(r.FocusSessions))
	for _, s := range r.FocusSessions {
		out = append(out, insights.FocusSession{Date: s.Date, Minutes: s.Minutes})
	}
	return out
}

type InsightsResponse struct {
	Retrospective *retrospective.Result `json:"retrospective"`
	Insights      insights.Result       `json:"insights"`
}
