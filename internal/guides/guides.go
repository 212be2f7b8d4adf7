// Package guides holds the static "know your rights" catalog.
package guides

import (
	"fmt"

	"pocketledger/internal/core"
)

const Disclaimer = "This information is for educational purposes only and does not constitute legal advice. " +
	"For specific legal situations, consult with a qualified attorney."

// Section is a titled list of short statements.
type Section struct {
	Key   string   `json:"key"`
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type Guide struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Summary  string    `json:"summary"`
	Sections []Section `json:"sections"`
}

// Section returns the section with the given key, if present.
func (g Guide) Section(key string) (Section, bool) {
	for _, s := range g.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

var ErrUnknownGuide = fmt.Errorf("guide: %w", core.ErrNotFound)

var catalog = []Guide{
	{
		ID:      "police_stop",
		Title:   "Police Stop Rights",
		Summary: "Know your rights during a police traffic stop or encounter",
		Sections: []Section{
			{Key: "rights", Title: "Your Rights", Items: []string{
				"You have the right to remain silent",
				"You have the right to refuse searches (except pat-downs for weapons)",
				"You have the right to ask if you're free to leave",
				"You have the right to record the interaction",
				"You have the right to an attorney if arrested",
			}},
			{Key: "dos", Title: "What TO Do", Items: []string{
				"Keep your hands visible",
				"Stay calm and polite",
				"Provide required documents when driving",
				"Clearly state if you're exercising your rights",
				"Remember details for later",
			}},
			{Key: "donts", Title: "What NOT To Do", Items: []string{
				"Don't resist, even if you believe the stop is unfair",
				"Don't argue or become confrontational",
				"Don't consent to searches",
				"Don't lie or provide false information",
				"Don't reach for items without permission",
			}},
		},
	},
	{
		ID:      "tenant",
		Title:   "Tenant Rights",
		Summary: "Understand your rights as a tenant regarding evictions and repairs",
		Sections: []Section{
			{Key: "rights", Title: "Your Rights", Items: []string{
				"Right to proper notice before eviction (usually 30 days)",
				"Right to a habitable living space",
				"Right to privacy and advance notice for inspections",
				"Right to return of security deposit",
				"Right to organize with other tenants",
			}},
			{Key: "eviction", Title: "Eviction Process", Items: []string{
				"Landlord must provide written notice",
				"You have the right to contest the eviction in court",
				"Landlord cannot change locks or shut off utilities",
				"You may have right to cure violations",
				"Emergency financial assistance may be available",
			}},
			{Key: "repairs", Title: "Repair Issues", Items: []string{
				"Document all repair requests in writing",
				"Landlord has reasonable time to make repairs",
				"You may have right to withhold rent for major issues",
				"You may have right to make repairs and deduct costs",
				"Report health and safety violations to authorities",
			}},
		},
	},
}

// List returns the catalog in display order.
func List() []Guide {
	out := make([]Guide, len(catalog))
	copy(out, catalog)
	return out
}

func Get(id string) (Guide, error) {
	for _, g := range catalog {
		if g.ID == id {
			return g, nil
		}
	}
	return Guide{}, fmt.Errorf("%w: %q", ErrUnknownGuide, id)
}

// Exists reports whether id names a catalog guide.
func Exists(id string) bool {
	_, err := Get(id)
	return err == nil
}
