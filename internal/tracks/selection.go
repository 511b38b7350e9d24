package tracks

// SelectAudioTrack returns the ID of the first track matching the preferred
// language, preserving list order. The second return is false when nothing
// matches; callers fall back to the player's own default rather than have
// this function guess.
func SelectAudioTrack(tracks []Track, preferredLanguage string) (int, bool) {
	for _, t := range tracks {
		if Matches(t, preferredLanguage) {
			return t.ID, true
		}
	}
	return 0, false
}

// SelectSubtitle picks a subtitle from the embedded tracks and external
// candidates according to the policy. The function is pure: identical inputs
// always yield an identical result, and no input is mutated.
func SelectSubtitle(internalTracks []Track, externalSubs []ExternalSubtitle, policy SelectionPolicy) SelectionResult {
	if !policy.AutoSelect {
		// Auto-selection is opt-in; never override an explicit "no subtitles".
		return noneResult()
	}

	pref := policy.PreferredLanguage
	if pref == "" {
		pref = DefaultLanguage
	}

	matchingInternal, haveInternal := firstMatchingTrack(internalTracks, pref)
	matchingExternal, haveExternal := firstMatchingSubtitle(externalSubs, pref)

	type candidate struct {
		ok     bool
		result SelectionResult
	}

	var chain []candidate
	switch policy.SubtitleSource {
	case SourceExternal:
		chain = []candidate{
			{haveExternal, externalCandidate(matchingExternal)},
			{haveInternal, internalCandidate(matchingInternal)},
			{len(externalSubs) > 0, firstExternal(externalSubs)},
			{len(internalTracks) > 0, firstInternal(internalTracks)},
		}
	default:
		// internal and any share a chain: embedded tracks win ties because
		// they load with zero network latency.
		chain = []candidate{
			{haveInternal, internalCandidate(matchingInternal)},
			{haveExternal, externalCandidate(matchingExternal)},
			{len(internalTracks) > 0, firstInternal(internalTracks)},
			{len(externalSubs) > 0, firstExternal(externalSubs)},
		}
	}

	for _, c := range chain {
		if c.ok {
			return c.result
		}
	}
	return noneResult()
}

func firstMatchingTrack(tracks []Track, preferredLanguage string) (Track, bool) {
	for _, t := range tracks {
		if Matches(t, preferredLanguage) {
			return t, true
		}
	}
	return Track{}, false
}

func firstMatchingSubtitle(subs []ExternalSubtitle, preferredLanguage string) (ExternalSubtitle, bool) {
	for _, s := range subs {
		if matchesSubtitle(s, preferredLanguage) {
			return s, true
		}
	}
	return ExternalSubtitle{}, false
}

func internalCandidate(t Track) SelectionResult {
	return internalResult(t.ID)
}

func externalCandidate(s ExternalSubtitle) SelectionResult {
	return externalResult(s)
}

func firstInternal(tracks []Track) SelectionResult {
	if len(tracks) == 0 {
		return noneResult()
	}
	return internalResult(tracks[0].ID)
}

func firstExternal(subs []ExternalSubtitle) SelectionResult {
	if len(subs) == 0 {
		return noneResult()
	}
	return externalResult(subs[0])
}
