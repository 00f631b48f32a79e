package model

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Competition struct {
	ID         int    `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Slug       string `json:"slug" yaml:"slug"`
	Country    string `json:"country" yaml:"country"`
	IconLink   string `json:"icon_link" yaml:"icon_link"`
	LeagueSize int    `json:"league_size" yaml:"league_size"`
}

type Catalog []Competition

// DefaultCatalog lists the competitions served when no catalog file is configured.
var DefaultCatalog = Catalog{
	{
		ID:         1,
		Name:       "Premier League",
		Slug:       "premier-league",
		Country:    "England",
		IconLink:   "https://www.premierleague.com/resources/rebrand/v7.153.44/i/elements/pl-main-logo.png",
		LeagueSize: 20,
	},
	{
		ID:         2,
		Name:       "LaLiga",
		Slug:       "laliga",
		Country:    "Spain",
		IconLink:   "https://images.fotmob.com/image_resources/logo/leaguelogo/87.png",
		LeagueSize: 20,
	},
	{
		ID:         3,
		Name:       "Serie A",
		Slug:       "serie-a",
		Country:    "Italy",
		IconLink:   "https://images.fotmob.com/image_resources/logo/leaguelogo/55.png",
		LeagueSize: 20,
	},
	{
		ID:         4,
		Name:       "Bundesliga",
		Slug:       "bundesliga",
		Country:    "Germany",
		IconLink:   "https://images.fotmob.com/image_resources/logo/leaguelogo/54.png",
		LeagueSize: 18,
	},
	{
		ID:         5,
		Name:       "Ligue 1",
		Slug:       "ligue-1",
		Country:    "France",
		IconLink:   "https://images.fotmob.com/image_resources/logo/leaguelogo/53.png",
		LeagueSize: 18,
	},
}

func (c Catalog) ByID(id int) (Competition, bool) {
	for _, comp := range c {
		if comp.ID == id {
			return comp, true
		}
	}
	return Competition{}, false
}

func (c Catalog) BySlug(slug string) (Competition, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, comp := range c {
		if comp.Slug == slug {
			return comp, true
		}
	}
	return Competition{}, false
}

// Lookup resolves either a numeric id or a slug.
func (c Catalog) Lookup(value string) (Competition, bool) {
	if id, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return c.ByID(id)
	}
	return c.BySlug(value)
}

// LoadCatalog reads a YAML list of competitions. An empty path yields the default catalog.
func LoadCatalog(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc struct {
		Competitions Catalog `yaml:"competitions"`
	}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := doc.Competitions.validate(); err != nil {
		return nil, err
	}
	return doc.Competitions, nil
}

func (c Catalog) validate() error {
	if len(c) == 0 {
		return errors.New("catalog has no competitions")
	}
	ids := map[int]bool{}
	slugs := map[string]bool{}
	for _, comp := range c {
		if comp.ID <= 0 || comp.Slug == "" {
			return fmt.Errorf("catalog entry %q needs an id and a slug", comp.Name)
		}
		if comp.LeagueSize < 4 {
			return fmt.Errorf("catalog entry %q has league size %d", comp.Slug, comp.LeagueSize)
		}
		if ids[comp.ID] || slugs[comp.Slug] {
			return fmt.Errorf("duplicate catalog entry %q", comp.Slug)
		}
		ids[comp.ID] = true
		slugs[comp.Slug] = true
	}
	return nil
}
