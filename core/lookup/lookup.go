// Package lookup defines the external collaborators the terminal dialog
// steps call and turns their answers into chat replies.
package lookup

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound reports that a collaborator understood the request but has
// nothing for it, such as an unknown location.
var ErrNotFound = errors.New("lookup: not found")

// CollaboratorError wraps a transport or decoding failure of an external
// service call.
type CollaboratorError struct {
	Service string
	Op      string
	Err     error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Business is one food search hit.
type Business struct {
	Name     string
	URL      string
	Rating   float64
	Snippet  string
	ImageURL string
}

// FoodResults are ordered best first.
type FoodResults struct {
	Businesses []Business
}

// FoodSearcher finds places serving term near location.
type FoodSearcher interface {
	Search(ctx context.Context, term, location string) (FoodResults, error)
}

// FoodSearcherFunc adapts a function to FoodSearcher.
type FoodSearcherFunc func(ctx context.Context, term, location string) (FoodResults, error)

func (f FoodSearcherFunc) Search(ctx context.Context, term, location string) (FoodResults, error) {
	return f(ctx, term, location)
}

// Directions status codes.
const (
	StatusOK          = "OK"
	StatusNotFound    = "NOT_FOUND"
	StatusZeroResults = "ZERO_RESULTS"
)

type RouteStep struct {
	HTMLInstructions string
}

type Leg struct {
	StartAddress string
	EndAddress   string
	DistanceText string
	DurationText string
	Steps        []RouteStep
}

type Route struct {
	Legs []Leg
}

// DirectionsResponse mirrors a directions service answer. A non-OK Status
// is not an error at this level.
type DirectionsResponse struct {
	Status string
	Routes []Route
}

// FirstLeg returns the first leg of the first route when Status is OK.
func (r DirectionsResponse) FirstLeg() (Leg, bool) {
	if r.Status != StatusOK || len(r.Routes) == 0 || len(r.Routes[0].Legs) == 0 {
		return Leg{}, false
	}
	return r.Routes[0].Legs[0], true
}

// DirectionsFinder plans a route between two free-text places.
type DirectionsFinder interface {
	Directions(ctx context.Context, origin, destination string) (DirectionsResponse, error)
}

// DirectionsFinderFunc adapts a function to DirectionsFinder.
type DirectionsFinderFunc func(ctx context.Context, origin, destination string) (DirectionsResponse, error)

func (f DirectionsFinderFunc) Directions(ctx context.Context, origin, destination string) (DirectionsResponse, error) {
	return f(ctx, origin, destination)
}
