package igdb

import (
	"fmt"
	"strings"

	"github.com/Henry-Sarabia/apicalypse"
)

// SearchFields is the field set requested for every search, including the
// expanded references the note variables are built from.
var SearchFields = []string{
	"name",
	"first_release_date",
	"involved_companies.developer",
	"involved_companies.company.name",
	"involved_companies.company.logo.url",
	"url",
	"cover.url",
	"genres.name",
	"game_modes.name",
	"themes.name",
	"storyline",
	"summary",
	"aggregated_rating",
	"rating",
}

var termEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// buildQuery renders the apicalypse body: fields ...; search "<term>"; limit n;
func buildQuery(term string, limit int) (string, error) {
	body, err := apicalypse.Query(
		apicalypse.Fields(SearchFields...),
		apicalypse.Search("", termEscaper.Replace(term)),
		apicalypse.Limit(limit),
	)
	if err != nil {
		return "", fmt.Errorf("building search query: %w", err)
	}
	return body, nil
}
