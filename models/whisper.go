package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Yash-SD99/Echoing-Hearts/pkg/geo"
)

const (
	MaxWhisperTitleLen = 80
	MaxWhisperTextLen  = 500
	MaxNearbyResults   = 200
)

type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Whisper is a note pinned to a map location.
type Whisper struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Title          string    `json:"title"`
	Text           string    `json:"text"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Likes          int       `json:"likes"`
	Dislikes       int       `json:"dislikes"`
	CreatedAt      time.Time `json:"created_at"`
}

func (w *Whisper) Point() geo.Point {
	return geo.Point{Lat: w.Latitude, Lng: w.Longitude}
}

// NearbyWhisper adds the viewer-specific fields to a Whisper.
type NearbyWhisper struct {
	Whisper
	DistanceMeters float64       `json:"distance_meters"`
	MyReaction     *ReactionKind `json:"my_reaction,omitempty"`
}

type CreateWhisperRequest struct {
	Title     string  `json:"title"`
	Text      string  `json:"text"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r *CreateWhisperRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Text = strings.TrimSpace(r.Text)

	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(r.Title) > MaxWhisperTitleLen {
		return fmt.Errorf("title must be at most %d characters", MaxWhisperTitleLen)
	}
	if r.Text == "" {
		return fmt.Errorf("text is required")
	}
	if utf8.RuneCountInString(r.Text) > MaxWhisperTextLen {
		return fmt.Errorf("text must be at most %d characters", MaxWhisperTextLen)
	}
	return geo.Point{Lat: r.Latitude, Lng: r.Longitude}.Validate()
}

// NearbyQuery is a radius search around a point.
type NearbyQuery struct {
	Center geo.Point
	Radius float64
	Limit  int
}

type ReactRequest struct {
	Kind ReactionKind `json:"kind"`
}

func (r *ReactRequest) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("kind must be %q or %q", ReactionLike, ReactionDislike)
	}
	return nil
}

// ReactionCounts is returned after a reaction changes.
type ReactionCounts struct {
	WhisperID  string        `json:"whisper_id"`
	Likes      int           `json:"likes"`
	Dislikes   int           `json:"dislikes"`
	MyReaction *ReactionKind `json:"my_reaction"`
}

// WhisperDetail is a single whisper as seen by one viewer.
type WhisperDetail struct {
	Whisper
	MyReaction *ReactionKind `json:"my_reaction"`
}
