package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Yash-SD99/Echoing-Hearts/database"
	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg"
)

type sqliteProfileRepo struct {
	db database.TxQuerier
}

func NewSQLiteProfileRepo(db database.TxQuerier) ProfileRepository {
	return &sqliteProfileRepo{db: db}
}

func (r *sqliteProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	interests, traits, err := encodeLists(p)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (user_id, display_name, avatar, interests, traits, first_name,
			short_bio, long_bio, favorite_song, city, mystery_fact)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING updated_at`,
		p.UserID, p.DisplayName, p.Avatar, interests, traits, p.FirstName,
		p.ShortBio, p.LongBio, p.FavoriteSong, p.City, p.MysteryFact,
	).Scan(&p.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: profile already exists", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *sqliteProfileRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	p := &models.Profile{}
	var interests, traits string

	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, display_name, avatar, interests, traits, first_name,
			short_bio, long_bio, favorite_song, city, mystery_fact, updated_at
		FROM profiles WHERE user_id = ?`, userID,
	).Scan(
		&p.UserID, &p.DisplayName, &p.Avatar, &interests, &traits, &p.FirstName,
		&p.ShortBio, &p.LongBio, &p.FavoriteSong, &p.City, &p.MysteryFact, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := json.Unmarshal([]byte(interests), &p.Interests); err != nil {
		return nil, fmt.Errorf("failed to decode interests: %w", err)
	}
	if err := json.Unmarshal([]byte(traits), &p.Traits); err != nil {
		return nil, fmt.Errorf("failed to decode traits: %w", err)
	}
	return p, nil
}

func (r *sqliteProfileRepo) Update(ctx context.Context, p *models.Profile) error {
	interests, traits, err := encodeLists(p)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, `
		UPDATE profiles SET display_name = ?, avatar = ?, interests = ?, traits = ?,
			first_name = ?, short_bio = ?, long_bio = ?, favorite_song = ?, city = ?,
			mystery_fact = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
		RETURNING updated_at`,
		p.DisplayName, p.Avatar, interests, traits,
		p.FirstName, p.ShortBio, p.LongBio, p.FavoriteSong, p.City,
		p.MysteryFact, p.UserID,
	).Scan(&p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: profile", pkg.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func encodeLists(p *models.Profile) (string, string, error) {
	if p.Interests == nil {
		p.Interests = []string{}
	}
	if p.Traits == nil {
		p.Traits = []string{}
	}
	interests, err := json.Marshal(p.Interests)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode interests: %w", err)
	}
	traits, err := json.Marshal(p.Traits)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode traits: %w", err)
	}
	return string(interests), string(traits), nil
}
