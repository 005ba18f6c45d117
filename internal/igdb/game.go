package igdb

import "time"

// Game is a search result. IGDB omits any field it has no data for, so every
// field besides ID is optional: nil pointers and empty slices mean "absent".
type Game struct {
	ID                int64             `json:"id"`
	Name              *string           `json:"name,omitempty"`
	FirstReleaseDate  *int64            `json:"first_release_date,omitempty"` // unix seconds
	URL               *string           `json:"url,omitempty"`
	Cover             *Image            `json:"cover,omitempty"`
	Genres            []Named           `json:"genres,omitempty"`
	GameModes         []Named           `json:"game_modes,omitempty"`
	Themes            []Named           `json:"themes,omitempty"`
	InvolvedCompanies []InvolvedCompany `json:"involved_companies,omitempty"`
	Storyline         *string           `json:"storyline,omitempty"`
	Summary           *string           `json:"summary,omitempty"`
	AggregatedRating  *float64          `json:"aggregated_rating,omitempty"` // critics, 0-100
	Rating            *float64          `json:"rating,omitempty"`            // users, 0-100
}

// Named is an expanded reference such as a genre, game mode or theme.
type Named struct {
	ID   int64   `json:"id"`
	Name *string `json:"name,omitempty"`
}

// Image is an expanded cover or logo reference. URL is protocol-relative
// (//images.igdb.com/...) and points at the "thumb" size.
type Image struct {
	ID  int64   `json:"id"`
	URL *string `json:"url,omitempty"`
}

// Company is an expanded company reference.
type Company struct {
	ID   int64   `json:"id"`
	Name *string `json:"name,omitempty"`
	Logo *Image  `json:"logo,omitempty"`
}

// InvolvedCompany links a game to a company and its role.
type InvolvedCompany struct {
	ID        int64    `json:"id"`
	Developer *bool    `json:"developer,omitempty"`
	Company   *Company `json:"company,omitempty"`
}

// Value dereferences an optional field, reporting whether it was present.
func Value[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// Title returns the game name, or "" when absent.
func (g Game) Title() string {
	name, _ := Value(g.Name)
	return name
}

// ReleaseTime returns the first release date in UTC.
func (g Game) ReleaseTime() (time.Time, bool) {
	secs, ok := Value(g.FirstReleaseDate)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

// Developer returns the first involved company flagged as developer.
func (g Game) Developer() (Company, bool) {
	for _, ic := range g.InvolvedCompanies {
		if dev, _ := Value(ic.Developer); dev && ic.Company != nil {
			return *ic.Company, true
		}
	}
	return Company{}, false
}

// Names returns the present names of a reference list, in order.
func Names(refs []Named) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if name, ok := Value(ref.Name); ok {
			names = append(names, name)
		}
	}
	return names
}
