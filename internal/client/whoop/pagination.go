package whoop

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// MaxPageSize is the largest limit the WHOOP API accepts.
const MaxPageSize = 25

type ListParams struct {
	Limit     int
	Start     *time.Time
	End       *time.Time
	NextToken *string
}

func (p *ListParams) values() url.Values {
	if p == nil {
		return nil
	}

	v := make(url.Values)

	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(min(p.Limit, MaxPageSize)))
	}
	if p.Start != nil {
		v.Set("start", p.Start.UTC().Format(time.RFC3339))
	}
	if p.End != nil {
		v.Set("end", p.End.UTC().Format(time.RFC3339))
	}
	if p.NextToken != nil {
		v.Set("nextToken", *p.NextToken)
	}

	return v
}

type PaginatedResponse[T any] struct {
	Records   []T     `json:"records"`
	NextToken *string `json:"next_token,omitempty"`
}

func (p *PaginatedResponse[T]) HasMore() bool {
	return p.NextToken != nil && *p.NextToken != ""
}

// ListFunc is the signature shared by every List method.
type ListFunc[T any] func(ctx context.Context, params *ListParams) (*PaginatedResponse[T], error)

// Each walks every page of list starting from params, calling fn once per
// page. params is not modified.
func Each[T any](ctx context.Context, list ListFunc[T], params ListParams, fn func(page []T) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		resp, err := list(ctx, &params)
		if err != nil {
			return err
		}

		if err := fn(resp.Records); err != nil {
			return err
		}

		if !resp.HasMore() {
			return nil
		}
		params.NextToken = resp.NextToken
	}
}

// Collect gathers every record across all pages.
func Collect[T any](ctx context.Context, list ListFunc[T], params ListParams) ([]T, error) {
	var all []T
	err := Each(ctx, list, params, func(page []T) error {
		all = append(all, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}
