package repository

import (
	"database/sql"

	go_json "github.com/goccy/go-json"
)

type scanner interface {
	Scan(dest ...any) error
}

func marshalScore[T any](score *T) (sql.NullString, error) {
	if score == nil {
		return sql.NullString{}, nil
	}
	data, err := go_json.Marshal(score)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalScore[T any](raw sql.NullString) (*T, error) {
	if !raw.Valid {
		return nil, nil
	}
	var score T
	if err := go_json.Unmarshal([]byte(raw.String), &score); err != nil {
		return nil, err
	}
	return &score, nil
}

// collect drains rows through scan, closing rows when done.
func collect[T any](rows *sql.Rows, scan func(scanner) (*T, error)) ([]T, error) {
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
