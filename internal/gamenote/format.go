// Package gamenote turns an IGDB game record into the named variables a note
// template consumes, and renders notes from them.
package gamenote

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"github.com/florianilch/gamenote/internal/igdb"
)

// Blank is what an absent value renders as. Templates rely on a non-empty
// placeholder so that YAML properties stay well-formed.
const Blank = " "

// Variables are the template variables for one game.
type Variables struct {
	ID                 int64  `json:"id" yaml:"id"`
	Name               string `json:"name" yaml:"name"`
	URLName            string `json:"urlName" yaml:"urlName"`
	FileName           string `json:"fileName" yaml:"fileName"`
	Slug               string `json:"slug" yaml:"slug"`
	URL                string `json:"url" yaml:"url"`
	Download           string `json:"download" yaml:"download"`
	Release            string `json:"release" yaml:"release"`
	Rating             string `json:"rating" yaml:"rating"`
	GenresFormatted    string `json:"genresFormatted" yaml:"genresFormatted"`
	GenresListed       string `json:"genresListed" yaml:"genresListed"`
	GameModesFormatted string `json:"gameModesFormatted" yaml:"gameModesFormatted"`
	GameModesListed    string `json:"gameModesListed" yaml:"gameModesListed"`
	ThemesFormatted    string `json:"themesFormatted" yaml:"themesFormatted"`
	ThemesListed       string `json:"themesListed" yaml:"themesListed"`
	Summary            string `json:"summary" yaml:"summary"`
	SummaryFormatted   string `json:"summaryFormatted" yaml:"summaryFormatted"`
	Storyline          string `json:"storyline" yaml:"storyline"`
	StorylineFormatted string `json:"storylineFormatted" yaml:"storylineFormatted"`
	DeveloperName      string `json:"developerName" yaml:"developerName"`
	DeveloperLogo      string `json:"developerLogo" yaml:"developerLogo"`
	Thumbnail          string `json:"thumbnail" yaml:"thumbnail"`
	Cover              string `json:"cover" yaml:"cover"`
}

// SuggestionTitle is the label shown when picking among results: "Name (Year)".
func SuggestionTitle(g igdb.Game) string {
	released, ok := g.ReleaseTime()
	if !ok {
		return g.Title()
	}
	return fmt.Sprintf("%s (%d)", g.Title(), released.Year())
}

// NewVariables builds the template variables for the chosen game.
// download is the user-supplied download link, possibly empty.
func NewVariables(g igdb.Game, download string) Variables {
	name := g.Title()
	v := Variables{
		ID:                 g.ID,
		Name:               name,
		URLName:            encodeURIComponent(name),
		FileName:           FileName(name),
		Slug:               slug.Make(name),
		URL:                orBlank(g.URL),
		Download:           DownloadURL(download),
		Release:            Blank,
		Rating:             Rating(g),
		GenresFormatted:    FormatList(igdb.Names(g.Genres)),
		GenresListed:       FormatListProperties(igdb.Names(g.Genres)),
		GameModesFormatted: FormatList(igdb.Names(g.GameModes)),
		GameModesListed:    FormatListProperties(igdb.Names(g.GameModes)),
		ThemesFormatted:    FormatList(igdb.Names(g.Themes)),
		ThemesListed:       FormatListProperties(igdb.Names(g.Themes)),
		Summary:            orBlank(g.Summary),
		SummaryFormatted:   Blank,
		Storyline:          orBlank(g.Storyline),
		StorylineFormatted: Blank,
		DeveloperName:      Blank,
		DeveloperLogo:      Blank,
		Thumbnail:          Blank,
		Cover:              Blank,
	}

	if released, ok := g.ReleaseTime(); ok {
		v.Release = released.Format("2006-01-02")
	}
	if summary, ok := igdb.Value(g.Summary); ok && summary != "" {
		v.SummaryFormatted = formatSummary(summary)
	}
	if storyline, ok := igdb.Value(g.Storyline); ok && storyline != "" {
		v.StorylineFormatted = formatStoryline(storyline)
	}

	if dev, ok := g.Developer(); ok {
		v.DeveloperName = orBlank(dev.Name)
		if logo := imageURL(dev.Logo); logo != "" {
			v.DeveloperLogo = strings.Replace(logo, "thumb", "logo_med", 1)
		}
	}

	// Image sizes: https://api-docs.igdb.com/#images
	if cover := imageURL(g.Cover); cover != "" {
		v.Thumbnail = cover
		v.Cover = strings.Replace(cover, "thumb", "cover_big", 1)
	}

	return v
}

// Rating prefers the critics' aggregated rating over the user rating, scaled to 0-10.
func Rating(g igdb.Game) string {
	if r, ok := igdb.Value(g.AggregatedRating); ok && r != 0 {
		return strconv.FormatFloat(r/10, 'f', 2, 64)
	}
	if r, ok := igdb.Value(g.Rating); ok && r != 0 {
		return strconv.FormatFloat(r/10, 'f', 2, 64)
	}
	return "0"
}

// FormatList renders names inline: a single name as-is, several as "a", "b".
func FormatList(list []string) string {
	if len(list) == 0 || list[0] == "N/A" {
		return Blank
	}
	if len(list) == 1 {
		return list[0]
	}

	quoted := make([]string, len(list))
	for i, item := range list {
		quoted[i] = `"` + strings.TrimSpace(item) + `"`
	}
	return strings.Join(quoted, ", ")
}

// FormatListProperties renders names as a YAML list continuing a property line.
func FormatListProperties(list []string) string {
	if len(list) == 0 || list[0] == "N/A" {
		return Blank
	}

	var b strings.Builder
	for _, item := range list {
		b.WriteString("\n- ")
		b.WriteString(strings.TrimSpace(item))
	}
	return b.String()
}

var illegalFileNameChars = strings.NewReplacer(
	`\`, "", ",", "", "#", "", "%", "", "&", "", "{", "", "}", "", "/", "",
	"*", "", "<", "", ">", "", "$", "", `"`, "", ":", "", "@", "", ".", "",
)

// FileName strips characters that are not allowed in note file names.
func FileName(name string) string {
	return illegalFileNameChars.Replace(name)
}

// DownloadURL trims the link and assumes https when no scheme is given.
func DownloadURL(raw string) string {
	link := strings.TrimSpace(raw)
	if link == "" {
		return Blank
	}
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		link = "https://" + link
	}
	return link
}

func formatStoryline(s string) string {
	return "> " + strings.ReplaceAll(s, "\n\n", "\n>\n> ")
}

func formatSummary(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n\n", "\n>\n> "), "> ", "")
}

// imageURL returns the absolute https URL of a protocol-relative IGDB image.
func imageURL(img *igdb.Image) string {
	if img == nil {
		return ""
	}
	u, ok := igdb.Value(img.URL)
	if !ok || u == "" {
		return ""
	}
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

func orBlank(p *string) string {
	if s, ok := igdb.Value(p); ok && s != "" {
		return s
	}
	return Blank
}

// Characters encodeURIComponent leaves alone but url.QueryEscape encodes.
var uriComponentFixups = strings.NewReplacer(
	"+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*",
)

func encodeURIComponent(s string) string {
	return uriComponentFixups.Replace(url.QueryEscape(s))
}
