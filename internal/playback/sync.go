// Package playback keeps video playback state and the annotation list in
// sync: active caption lookup, scrubber state, programmatic seeks, and
// timeline markers. It also serves the local preview file to the player
// with byte-range support.
package playback

import (
	"log/slog"
	"math"
	"sync"

	"github.com/clipsight/clipsight-agent/internal/annotation"
	"github.com/clipsight/clipsight-agent/internal/timecode"
)

// Marker is one annotation projected onto the timeline. Fraction is the
// position relative to duration, always within [0, 1].
type Marker struct {
	Index    int     `json:"index"`
	TimeSecs float64 `json:"time_s"`
	Fraction float64 `json:"fraction"`
}

// Snapshot is a read-only copy of playback state. SeekEpoch increments on
// every JumpTo; the player applies SeekToSecs when it observes a change.
type Snapshot struct {
	DurationSecs  float64  `json:"duration_s"`
	CurrentSecs   float64  `json:"current_s"`
	ScrubFraction float64  `json:"scrub_fraction"`
	IsScrubbing   bool     `json:"is_scrubbing"`
	IsPlaying     bool     `json:"is_playing"`
	ActiveCaption string   `json:"active_caption,omitempty"`
	ActiveIndex   int      `json:"active_index"`
	SeekEpoch     uint64   `json:"seek_epoch"`
	SeekToSecs    float64  `json:"seek_to_s"`
	Markers       []Marker `json:"markers"`
}

// Synchronizer is driven by three independent event sources: player events
// relayed by the UI, user scrub input, and programmatic seeks. While a
// scrub session is active, user input wins over native time reporting.
type Synchronizer struct {
	logger *slog.Logger

	mu            sync.Mutex
	durationSecs  float64
	currentSecs   float64
	scrubFraction float64
	isScrubbing   bool
	isPlaying     bool
	activeCaption string
	activeIndex   int
	seekEpoch     uint64
	seekToSecs    float64
	list          annotation.List
}

func NewSynchronizer(logger *slog.Logger) *Synchronizer {
	return &Synchronizer{logger: logger, activeIndex: -1}
}

// SetAnnotations replaces the annotation list the synchronizer tracks and
// recomputes the active caption against the current position.
func (s *Synchronizer) SetAnnotations(list annotation.List) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = make(annotation.List, len(list))
	copy(s.list, list)
	s.recomputeActiveLocked()
}

// HandleTimeUpdate records the player-reported position. The scrub fraction
// follows unless the user is mid-drag.
func (s *Synchronizer) HandleTimeUpdate(secs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentSecs = secs
	if !s.isScrubbing && s.durationSecs > 0 {
		s.scrubFraction = clampFraction(secs / s.durationSecs)
	}
	s.recomputeActiveLocked()
}

// SetDuration records the media duration, reported by the player on
// loadedmetadata or by the local probe.
func (s *Synchronizer) SetDuration(secs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if secs > 0 {
		s.durationSecs = secs
	}
}

func (s *Synchronizer) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isPlaying = playing
}

// BeginScrub opens a scrub session; native time reporting is suppressed
// until EndScrub.
func (s *Synchronizer) BeginScrub() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isScrubbing = true
}

// Scrub records drag progress as a fraction of duration.
func (s *Synchronizer) Scrub(fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := clampFraction(fraction)
	s.scrubFraction = f
	if s.durationSecs > 0 {
		s.currentSecs = f * s.durationSecs
	}
}

func (s *Synchronizer) EndScrub() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isScrubbing = false
}

// JumpTo seeks the player to an annotation's position. It does not toggle
// play/pause.
func (s *Synchronizer) JumpTo(secs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekEpoch++
	s.seekToSecs = secs
	s.currentSecs = secs
	if s.durationSecs > 0 {
		s.scrubFraction = clampFraction(secs / s.durationSecs)
	}
	s.recomputeActiveLocked()
}

// Reset discards all synchronization state. Called when a new video loads;
// annotations of the previous video are dropped along with position state.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durationSecs = 0
	s.currentSecs = 0
	s.scrubFraction = 0
	s.isScrubbing = false
	s.isPlaying = false
	s.activeCaption = ""
	s.activeIndex = -1
	s.seekEpoch = 0
	s.seekToSecs = 0
	s.list = nil
}

func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		DurationSecs:  s.durationSecs,
		CurrentSecs:   s.currentSecs,
		ScrubFraction: s.scrubFraction,
		IsScrubbing:   s.isScrubbing,
		IsPlaying:     s.isPlaying,
		ActiveCaption: s.activeCaption,
		ActiveIndex:   s.activeIndex,
		SeekEpoch:     s.seekEpoch,
		SeekToSecs:    s.seekToSecs,
		Markers:       s.markersLocked(),
	}
}

// recomputeActiveLocked scans the list in reverse of list order and picks
// the first entry at or before the current position. Among ties, the entry
// nearest the end of list order wins; list order is mode-dependent, so this
// is not necessarily the chronologically latest entry.
func (s *Synchronizer) recomputeActiveLocked() {
	for i := len(s.list) - 1; i >= 0; i-- {
		t := timecode.Parse(s.list[i].Time)
		if math.IsNaN(t) {
			continue
		}
		if t <= s.currentSecs {
			s.activeCaption = s.list[i].Text
			s.activeIndex = i
			return
		}
	}
	s.activeCaption = ""
	s.activeIndex = -1
}

// markersLocked projects annotations onto the timeline, excluding entries
// outside the current duration. Recomputed on every snapshot so it tracks
// duration and list changes.
func (s *Synchronizer) markersLocked() []Marker {
	if s.durationSecs <= 0 {
		return nil
	}

	var markers []Marker
	for i, a := range s.list {
		t := timecode.Parse(a.Time)
		if math.IsNaN(t) {
			continue
		}
		fraction := t / s.durationSecs
		if fraction < 0 || fraction > 1 {
			continue
		}
		markers = append(markers, Marker{Index: i, TimeSecs: t, Fraction: fraction})
	}
	return markers
}

func clampFraction(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
