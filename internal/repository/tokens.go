package repository

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/oauth2"
)

type tokenRepo struct {
	db *sql.DB
}

func (r *tokenRepo) Get(ctx context.Context) (*oauth2.Token, error) {
	var (
		token   oauth2.Token
		refresh sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, token_type, expiry FROM tokens WHERE id = 1`,
	).Scan(&token.AccessToken, &refresh, &token.TokenType, &token.Expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	token.RefreshToken = refresh.String
	return &token, nil
}

func (r *tokenRepo) Upsert(ctx context.Context, token *oauth2.Token) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (id, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = COALESCE(excluded.refresh_token, tokens.refresh_token),
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = CURRENT_TIMESTAMP`,
		token.AccessToken, nullString(token.RefreshToken), token.Type(), token.Expiry.UTC(),
	)
	return err
}

func (r *tokenRepo) Delete(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tokens`)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
