package fallback

import (
	"slices"
	"time"

	"NewsQuiz/internal/domain"
	"NewsQuiz/internal/ports"
)

// referenceTime anchors the bundled dataset so every build renders the same feed.
var referenceTime = time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC)

// Provider serves the bundled offline dataset.
type Provider struct {
	articles []domain.Article
}

var _ ports.FallbackProvider = (*Provider)(nil)

// NewProvider returns the provider with the curated dataset.
func NewProvider() *Provider {
	return &Provider{articles: dataset()}
}

// Articles returns a copy of the dataset, newest first.
func (p *Provider) Articles() []domain.Article {
	return slices.Clone(p.articles)
}

func at(hoursAgo int) time.Time {
	return referenceTime.Add(-time.Duration(hoursAgo) * time.Hour)
}

func dataset() []domain.Article {
	return []domain.Article{
		{
			ID:           "offline-001",
			Headline:     "City council approves extended library opening hours",
			Body:         "Public libraries across the city will stay open until 10 p.m. on weekdays starting next month, after the council approved additional funding for evening staff.",
			Category:     domain.CategoryPolitics,
			IsFabricated: false,
			CreatedAt:    at(1),
		},
		{
			ID:                "offline-002",
			Headline:          "Scientists confirm the Great Wall is visible from the Moon with the naked eye",
			Body:              "A team of researchers announced that astronauts can clearly see the Great Wall of China from the lunar surface without any optical aid.",
			Category:          domain.CategoryScience,
			IsFabricated:      true,
			CreatedAt:         at(3),
			FabricationReason: "The wall is far too narrow to be seen from the Moon; astronauts have repeatedly said it is not visible even from low orbit without aid.",
		},
		{
			ID:           "offline-003",
			Headline:     "Central bank holds interest rates steady for third consecutive meeting",
			Body:         "Policymakers kept the benchmark rate unchanged, citing easing inflation and a stable labour market, and signalled that future moves will depend on incoming data.",
			Category:     domain.CategoryEconomy,
			IsFabricated: false,
			CreatedAt:    at(6),
		},
		{
			ID:                "offline-004",
			Headline:          "New smartphone battery charges fully in one second, ships next week",
			Body:              "A startup claims its graphene cell reaches 100 percent in a single second and will be in every major phone model by next week.",
			Category:          domain.CategoryTechnology,
			IsFabricated:      true,
			CreatedAt:         at(10),
			FabricationReason: "No commercial battery approaches one-second full charging, and no manufacturer can ship a new cell across every model within a week.",
		},
		{
			ID:           "offline-005",
			Headline:     "Health agency recommends regular hand washing during flu season",
			Body:         "Officials reminded residents that washing hands with soap for at least 20 seconds remains one of the most effective ways to limit the spread of seasonal influenza.",
			Category:     domain.CategoryHealth,
			IsFabricated: false,
			CreatedAt:    at(15),
		},
		{
			ID:                "offline-006",
			Headline:          "Football match replayed after referee's whistle is found to be out of tune",
			Body:              "League officials ordered a full replay of Saturday's derby, ruling that the referee's whistle sounded at the wrong pitch and confused the players.",
			Category:          domain.CategorySports,
			IsFabricated:      true,
			CreatedAt:         at(21),
			FabricationReason: "Competition rules contain no provision about whistle pitch, and no replay was ordered.",
		},
		{
			ID:           "offline-007",
			Headline:     "Film festival announces record number of submissions",
			Body:         "Organisers said more than 9,000 films were submitted this year, up from last year, with documentaries seeing the sharpest growth.",
			Category:     domain.CategoryEntertainment,
			IsFabricated: false,
			CreatedAt:    at(28),
		},
		{
			ID:                "offline-008",
			Headline:          "Country abolishes Mondays to boost national productivity",
			Body:              "Lawmakers voted to remove Monday from the official calendar, moving straight from Sunday to Tuesday starting next year.",
			Category:          domain.CategoryWorld,
			IsFabricated:      true,
			CreatedAt:         at(36),
			FabricationReason: "Calendars are not changed by national vote in this way; the story originates from a satire site.",
		},
	}
}
