// package match implements fuzzy string matching for setlist songs and
// setlist candidate disambiguation.
//
// Similarity is a normalized Levenshtein ratio over case-folded,
// punctuation-stripped text. Track selection requires the title similarity
// to clear a configured threshold; artist similarity only breaks ranking
// between eligible candidates. Ties go to the first-listed candidate, which
// preserves the search API's popularity ordering.
package match

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/hazelfield/encore/internal/models"
)

// artistWeight is the contribution of artist similarity when ranking
// candidates that already cleared the title threshold.
const artistWeight = 0.3

// minSetlistScore is the floor below which no setlist candidate is accepted.
// A candidate needs at least a strong artist match to reach it.
const minSetlistScore = 1.8

// Normalize lowercases, strips punctuation, and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '/':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// CleanTitle removes parenthesized and bracketed segments from a title,
// so "Song (Live)" and "Song [Remastered 2011]" both reduce to "Song".
func CleanTitle(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity returns the normalized Levenshtein ratio between two strings
// in [0, 1], computed on their Normalize'd forms. Identical strings score 1.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}

	longest := len([]rune(na))
	if l := len([]rune(nb)); l > longest {
		longest = l
	}

	dist := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(dist)/float64(longest)
}

// TitleSimilarity scores a candidate track title against a setlist title,
// taking the better of the raw and cleaned comparisons.
func TitleSimilarity(title, candidate string) float64 {
	score := Similarity(title, candidate)
	if cleaned := Similarity(CleanTitle(title), CleanTitle(candidate)); cleaned > score {
		score = cleaned
	}
	return score
}

// BestCandidate selects the best catalog track for a song, or a result with
// a nil track when no candidate's title similarity reaches the threshold.
//
// Eligible candidates are ranked by title similarity plus a weighted artist
// similarity; on equal rank the first-listed candidate wins.
func BestCandidate(title, performer string, candidates []models.Track, threshold float64) models.MatchResult {
	result := models.MatchResult{Title: title, Performer: performer}

	best := -1.0
	for i := range candidates {
		titleSim := TitleSimilarity(title, candidates[i].Title)
		if titleSim < threshold {
			continue
		}

		rank := titleSim + artistWeight*Similarity(performer, candidates[i].Artist)
		if rank > best {
			best = rank
			result.Track = &candidates[i]
			result.Score = titleSim
		}
	}

	return result
}

// ScoreSetlist scores a candidate setlist against the event being matched.
// Artist similarity is weighted double, venue and city similarity count
// once each, and an exact date match adds a half-point bonus.
func ScoreSetlist(event models.Event, setlist models.Setlist) float64 {
	score := 2 * Similarity(event.Artist, setlist.Artist)
	score += Similarity(event.Venue, setlist.Venue)
	score += Similarity(event.City, setlist.City)
	if event.Date != "" && event.Date == setlist.EventDate {
		score += 0.5
	}
	return score
}

// BestSetlist disambiguates between candidate setlists for an event.
// Returns false when no candidate reaches the acceptance floor.
func BestSetlist(event models.Event, candidates []models.Setlist) (models.Setlist, float64, bool) {
	var (
		best      models.Setlist
		bestScore = -1.0
	)

	for _, candidate := range candidates {
		if score := ScoreSetlist(event, candidate); score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	if bestScore < minSetlistScore {
		return models.Setlist{}, bestScore, false
	}

	return best, bestScore, true
}
