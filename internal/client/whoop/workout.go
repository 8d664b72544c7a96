package whoop

import (
	"context"
	"net/http"
	"time"
)

type Workout struct {
	ID             string        `json:"id"`
	UserID         int64         `json:"user_id"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Start          time.Time     `json:"start"`
	End            time.Time     `json:"end"`
	TimezoneOffset string        `json:"timezone_offset"`
	SportName      string        `json:"sport_name"`
	ScoreState     ScoreState    `json:"score_state"`
	Score          *WorkoutScore `json:"score"`
}

func (w Workout) Duration() time.Duration {
	if w.End.Before(w.Start) {
		return 0
	}
	return w.End.Sub(w.Start)
}

type WorkoutScore struct {
	Strain              float64      `json:"strain"`
	AverageHeartRate    int          `json:"average_heart_rate"`
	MaxHeartRate        int          `json:"max_heart_rate"`
	Kilojoule           float64      `json:"kilojoule"`
	PercentRecorded     float64      `json:"percent_recorded"`
	DistanceMeter       *float64     `json:"distance_meter"`
	AltitudeGainMeter   *float64     `json:"altitude_gain_meter"`
	AltitudeChangeMeter *float64     `json:"altitude_change_meter"`
	ZoneDurations       WorkoutZones `json:"zone_durations"`
}

type WorkoutZones struct {
	ZoneZeroMilli  int `json:"zone_zero_milli"`
	ZoneOneMilli   int `json:"zone_one_milli"`
	ZoneTwoMilli   int `json:"zone_two_milli"`
	ZoneThreeMilli int `json:"zone_three_milli"`
	ZoneFourMilli  int `json:"zone_four_milli"`
	ZoneFiveMilli  int `json:"zone_five_milli"`
}

// Milli returns zone durations indexed 0-5.
func (z WorkoutZones) Milli() [6]int {
	return [6]int{
		z.ZoneZeroMilli,
		z.ZoneOneMilli,
		z.ZoneTwoMilli,
		z.ZoneThreeMilli,
		z.ZoneFourMilli,
		z.ZoneFiveMilli,
	}
}

func (z WorkoutZones) TotalMilli() int {
	var total int
	for _, ms := range z.Milli() {
		total += ms
	}
	return total
}

const workoutRoute = "/v2/activity/workout"

type workoutService struct {
	client *Client
}

func (s *workoutService) Get(ctx context.Context, id string) (*Workout, error) {
	var workout Workout
	if err := s.client.do(ctx, http.MethodGet, workoutRoute+"/"+id, nil, &workout); err != nil {
		return nil, err
	}
	return &workout, nil
}

func (s *workoutService) List(ctx context.Context, params *ListParams) (*PaginatedResponse[Workout], error) {
	var resp PaginatedResponse[Workout]
	if err := s.client.do(ctx, http.MethodGet, workoutRoute, params.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
