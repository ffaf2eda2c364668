package lookup

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripHTML(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Head <b>north</b> on <b>Main St</b>", "Head north on Main St"},
		{`Turn <b>left</b> onto <b>Elm</b><div style="font-size:0.9em">Destination will be on the right</div>`, "Turn left onto Elm Destination will be on the right"},
		{"Take exit &amp; merge", "Take exit & merge"},
		{"  plain   text ", "plain text"},
		{"", ""},
		{"<wbr/>Keep&nbsp;right", "Keep right"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, StripHTML(tc.in), tc.in)
	}
}

func TestBusinessAttachment(t *testing.T) {
	att := BusinessAttachment(Business{
		Name:     "Mike's Pizza",
		URL:      "https://example.test/mikes",
		Rating:   4.5,
		Snippet:  "Best slice in town.",
		ImageURL: "https://example.test/mikes.jpg",
	})
	require.Equal(t, "Mike's Pizza", att.Title)
	require.Equal(t, "Rating: 4.5\nBest slice in town.", att.Text)
	require.Equal(t, ColorFood, att.Color)
	require.Equal(t, "https://example.test/mikes.jpg", att.ImageURL)

	require.Equal(t, "Rating: 4", BusinessAttachment(Business{Rating: 4}).Text)
}

func TestDirectionsAttachments(t *testing.T) {
	leg := Leg{
		StartAddress: "Hanover, NH",
		EndAddress:   "Boston, MA",
		DistanceText: "127 mi",
		DurationText: "2 hours 5 mins",
		Steps: []RouteStep{
			{HTMLInstructions: "Head <b>south</b>"},
			{HTMLInstructions: "<div></div>"},
			{HTMLInstructions: "Merge onto <b>I-89 S</b>"},
		},
	}
	sum := SummaryAttachment(leg)
	require.Equal(t, ColorSummary, sum.Color)
	require.Contains(t, sum.Text, "Hanover, NH")
	require.Contains(t, sum.Text, "2 hours 5 mins")

	dir := DirectionsAttachment(leg)
	require.Equal(t, ColorDirections, dir.Color)
	require.Equal(t, "Head south\nMerge onto I-89 S", dir.Text)
}

func TestFirstLeg(t *testing.T) {
	ok := DirectionsResponse{Status: StatusOK, Routes: []Route{{Legs: []Leg{{StartAddress: "a"}}}}}
	leg, found := ok.FirstLeg()
	require.True(t, found)
	require.Equal(t, "a", leg.StartAddress)

	for _, resp := range []DirectionsResponse{
		{Status: StatusNotFound, Routes: ok.Routes},
		{Status: StatusOK},
		{Status: StatusOK, Routes: []Route{{}}},
	} {
		_, found := resp.FirstLeg()
		require.False(t, found)
	}
}

func TestCollaboratorErrorUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("food step: %w", &CollaboratorError{Service: "yelp", Op: "search", Err: cause})

	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "yelp", ce.Service)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "yelp search: dial tcp: refused", ce.Error())
}
