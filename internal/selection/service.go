// Package selection wires the pure track-selection engine to policies,
// subtitle sources, and the audit log.
package selection

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/selectarr/selectarr/internal/database"
	"github.com/selectarr/selectarr/internal/tracks"
	"github.com/selectarr/selectarr/internal/web/sse"
)

// SubtitleSearcher finds external subtitle candidates for a media title.
// Implemented by the provider client.
type SubtitleSearcher interface {
	Enabled() bool
	Search(ctx context.Context, title, preferredLanguage string) ([]tracks.ExternalSubtitle, error)
}

// SidecarIndex looks up locally indexed subtitle files.
// Implemented by the sidecar watcher.
type SidecarIndex interface {
	Lookup(mediaTitle string) []tracks.ExternalSubtitle
}

// Service runs selections for users: it resolves the user's policy, gathers
// external candidates when the player sent none, applies the engine, and
// records the outcome.
type Service struct {
	db       *database.DB
	provider SubtitleSearcher
	sidecar  SidecarIndex
	broker   *sse.Broker
}

// NewService creates a selection service. provider, sidecar, and broker may
// be nil; the service degrades to embedded tracks only.
func NewService(db *database.DB, provider SubtitleSearcher, sidecar SidecarIndex, broker *sse.Broker) *Service {
	return &Service{
		db:       db,
		provider: provider,
		sidecar:  sidecar,
		broker:   broker,
	}
}

// PolicyFor returns the stored policy for a user, or the default policy when
// none has been saved.
func (s *Service) PolicyFor(userID string) (tracks.SelectionPolicy, error) {
	stored, err := s.db.GetPolicy(userID)
	if err != nil {
		return tracks.SelectionPolicy{}, err
	}
	if stored == nil {
		return database.DefaultPolicy(userID).SelectionPolicy(), nil
	}
	return stored.SelectionPolicy(), nil
}

// SelectAudio picks an audio track for a user and records the decision. The
// bool is false when no track matched; the player keeps its own default then.
func (s *Service) SelectAudio(ctx context.Context, userID, mediaTitle string, trackList []tracks.Track) (int, bool, error) {
	policy, err := s.PolicyFor(userID)
	if err != nil {
		return 0, false, err
	}

	pref := policy.PreferredLanguage
	if pref == "" {
		pref = tracks.DefaultLanguage
	}

	trackID, ok := tracks.SelectAudioTrack(trackList, pref)
	if !ok {
		return 0, false, nil
	}

	s.record(&database.SelectionRecord{
		UserID:     userID,
		MediaTitle: mediaTitle,
		Kind:       database.SelectionKindAudio,
		Source:     string(tracks.SelectionInternal),
		TrackID:    &trackID,
		Language:   pref,
	})

	log.Debug().
		Str("user", userID).
		Str("media", mediaTitle).
		Int("track_id", trackID).
		Str("language", pref).
		Msg("Audio track selected")

	return trackID, true, nil
}

// SelectSubtitle picks a subtitle for a user and records the decision. When
// the player supplied no external candidates, the sidecar index and the
// provider are consulted; provider failures degrade to embedded tracks with a
// warning rather than failing the selection.
func (s *Service) SelectSubtitle(ctx context.Context, userID, mediaTitle string, internalTracks []tracks.Track, externalSubs []tracks.ExternalSubtitle) (tracks.SelectionResult, error) {
	policy, err := s.PolicyFor(userID)
	if err != nil {
		return tracks.SelectionResult{}, err
	}

	if len(externalSubs) == 0 && policy.AutoSelect {
		externalSubs = s.gatherExternal(ctx, mediaTitle, policy.PreferredLanguage)
	}

	result := tracks.SelectSubtitle(internalTracks, externalSubs, policy)

	if result.Source != tracks.SelectionNone {
		rec := &database.SelectionRecord{
			UserID:     userID,
			MediaTitle: mediaTitle,
			Kind:       database.SelectionKindSubtitle,
			Source:     string(result.Source),
		}
		switch result.Source {
		case tracks.SelectionInternal:
			id := result.TrackID
			rec.TrackID = &id
			rec.Language = trackLanguage(internalTracks, result.TrackID)
		case tracks.SelectionExternal:
			id := result.Subtitle.ID
			rec.SubtitleID = &id
			rec.Language = result.Subtitle.Language
		}
		s.record(rec)
	}

	log.Debug().
		Str("user", userID).
		Str("media", mediaTitle).
		Str("source", string(result.Source)).
		Msg("Subtitle selected")

	return result, nil
}

// gatherExternal merges sidecar and provider candidates. Sidecar files come
// first: they are already on disk and need no download.
func (s *Service) gatherExternal(ctx context.Context, mediaTitle, preferredLanguage string) []tracks.ExternalSubtitle {
	var subs []tracks.ExternalSubtitle

	if s.sidecar != nil {
		subs = append(subs, s.sidecar.Lookup(mediaTitle)...)
	}

	if s.provider != nil && s.provider.Enabled() {
		found, err := s.provider.Search(ctx, mediaTitle, preferredLanguage)
		if err != nil {
			log.Warn().Err(err).Str("media", mediaTitle).Msg("Subtitle provider search failed, continuing with local candidates")
		} else {
			subs = append(subs, found...)
		}
	}

	return subs
}

// record persists a decision and notifies SSE listeners. History failures are
// logged but never block a selection.
func (s *Service) record(rec *database.SelectionRecord) {
	if err := s.db.CreateSelectionRecord(rec); err != nil {
		log.Error().Err(err).Msg("Failed to record selection")
		return
	}
	if s.broker != nil {
		s.broker.Broadcast(sse.Event{Type: sse.EventSelectionMade, Data: rec})
	}
}

func trackLanguage(trackList []tracks.Track, id int) string {
	for _, t := range trackList {
		if t.ID == id {
			if t.Language != "" {
				return t.Language
			}
			return t.Name
		}
	}
	return ""
}

// UpdatePolicy validates and stores a user's policy, then notifies listeners.
func (s *Service) UpdatePolicy(p *database.Policy) error {
	if !p.SubtitleSource.Valid() {
		return fmt.Errorf("invalid subtitle source %q", p.SubtitleSource)
	}
	if err := s.db.UpsertPolicy(p); err != nil {
		return err
	}
	if s.broker != nil {
		s.broker.Broadcast(sse.Event{Type: sse.EventPolicyUpdated, Data: p})
	}
	return nil
}
