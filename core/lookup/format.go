package lookup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeanzhou31/slackattack/core/chat"
)

// Attachment accents.
const (
	ColorFood       = "#7CD197"
	ColorSummary    = "#C51D1D"
	ColorDirections = "#88a3de"
)

// FoundIntro precedes every successful lookup reply.
const FoundIntro = "I think I found something!"

// FormatRating renders a rating without trailing zeros: 4.5, 4, 3.75.
func FormatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// BusinessAttachment renders a food search hit.
func BusinessAttachment(b Business) chat.Attachment {
	text := "Rating: " + FormatRating(b.Rating)
	if snippet := strings.TrimSpace(b.Snippet); snippet != "" {
		text += "\n" + snippet
	}
	return chat.Attachment{
		Title:    b.Name,
		Link:     b.URL,
		Text:     text,
		ImageURL: b.ImageURL,
		Color:    ColorFood,
	}
}

// SummaryAttachment renders the endpoints, distance and duration of a leg.
func SummaryAttachment(leg Leg) chat.Attachment {
	return chat.Attachment{
		Title: "Summary",
		Text: fmt.Sprintf("Start: %s\nEnd: %s\nTravel distance: %s\nTravel duration: %s",
			leg.StartAddress, leg.EndAddress, leg.DistanceText, leg.DurationText),
		Color: ColorSummary,
	}
}

// DirectionsAttachment lists the leg's turn-by-turn steps as plain text.
func DirectionsAttachment(leg Leg) chat.Attachment {
	lines := make([]string, 0, len(leg.Steps))
	for _, st := range leg.Steps {
		if line := StripHTML(st.HTMLInstructions); line != "" {
			lines = append(lines, line)
		}
	}
	return chat.Attachment{
		Title: "Directions",
		Text:  strings.Join(lines, "\n"),
		Color: ColorDirections,
	}
}
