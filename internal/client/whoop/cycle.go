package whoop

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type Cycle struct {
	ID             int64       `json:"id"`
	UserID         int64       `json:"user_id"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Start          time.Time   `json:"start"`
	End            *time.Time  `json:"end"`
	TimezoneOffset string      `json:"timezone_offset"`
	ScoreState     ScoreState  `json:"score_state"`
	Score          *CycleScore `json:"score"`
}

type CycleScore struct {
	Strain           float64 `json:"strain"`
	Kilojoule        float64 `json:"kilojoule"`
	AverageHeartRate int     `json:"average_heart_rate"`
	MaxHeartRate     int     `json:"max_heart_rate"`
}

// Strain returns the day strain, or false while the cycle is unscored.
func (c Cycle) Strain() (float64, bool) {
	if c.ScoreState != ScoreStateScored || c.Score == nil {
		return 0, false
	}
	return c.Score.Strain, true
}

const cycleRoute = "/v2/cycle"

type cycleService struct {
	client *Client
}

func (s *cycleService) Get(ctx context.Context, id int64) (*Cycle, error) {
	path := fmt.Sprintf("%s/%d", cycleRoute, id)

	var cycle Cycle
	if err := s.client.do(ctx, http.MethodGet, path, nil, &cycle); err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (s *cycleService) List(ctx context.Context, params *ListParams) (*PaginatedResponse[Cycle], error) {
	var resp PaginatedResponse[Cycle]
	if err := s.client.do(ctx, http.MethodGet, cycleRoute, params.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *cycleService) GetSleep(ctx context.Context, cycleID int64) (*Sleep, error) {
	path := fmt.Sprintf("%s/%d/sleep", cycleRoute, cycleID)

	var sleep Sleep
	if err := s.client.do(ctx, http.MethodGet, path, nil, &sleep); err != nil {
		return nil, err
	}
	return &sleep, nil
}

func (s *cycleService) GetRecovery(ctx context.Context, cycleID int64) (*Recovery, error) {
	path := fmt.Sprintf("%s/%d/recovery", cycleRoute, cycleID)

	var recovery Recovery
	if err := s.client.do(ctx, http.MethodGet, path, nil, &recovery); err != nil {
		return nil, err
	}
	return &recovery, nil
}
