package whoop

import (
	"context"
	"net/http"
	"time"
)

type Recovery struct {
	CycleID    int64          `json:"cycle_id"`
	SleepID    string         `json:"sleep_id"`
	UserID     int64          `json:"user_id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	ScoreState ScoreState     `json:"score_state"`
	Score      *RecoveryScore `json:"score"`
}

type RecoveryScore struct {
	UserCalibrating  bool    `json:"user_calibrating"`
	RecoveryScore    float64 `json:"recovery_score"`
	RestingHeartRate float64 `json:"resting_heart_rate"`
	HRVRmssdMilli    float64 `json:"hrv_rmssd_milli"`
	SpO2Percentage   float64 `json:"spo2_percentage"`
	SkinTempCelsius  float64 `json:"skin_temp_celsius"`
}

// IsScored reports whether the recovery carries a usable score.
func (r Recovery) IsScored() bool {
	return r.ScoreState == ScoreStateScored && r.Score != nil
}

type recoveryService struct {
	client *Client
}

func (s *recoveryService) List(ctx context.Context, params *ListParams) (*PaginatedResponse[Recovery], error) {
	const route = "/v2/recovery"

	var resp PaginatedResponse[Recovery]
	if err := s.client.do(ctx, http.MethodGet, route, params.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
