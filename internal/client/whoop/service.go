package whoop

import "context"

// Lister pages through one WHOOP collection. Its List method value is a
// ListFunc, so every service can feed Each and Collect.
type Lister[T any] interface {
	List(ctx context.Context, params *ListParams) (*PaginatedResponse[T], error)
}

type UserService interface {
	GetProfile(ctx context.Context) (*UserProfile, error)
}

// CycleService also reaches the sleep and recovery scored for a cycle.
type CycleService interface {
	Lister[Cycle]
	Get(ctx context.Context, id int64) (*Cycle, error)
	GetSleep(ctx context.Context, cycleID int64) (*Sleep, error)
	GetRecovery(ctx context.Context, cycleID int64) (*Recovery, error)
}

type RecoveryService interface {
	Lister[Recovery]
}

type SleepService interface {
	Lister[Sleep]
	Get(ctx context.Context, id string) (*Sleep, error)
}

type WorkoutService interface {
	Lister[Workout]
	Get(ctx context.Context, id string) (*Workout, error)
}
