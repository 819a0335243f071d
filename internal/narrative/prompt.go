package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/engine"
)

const promptInstructions = `You are an energy policy and power systems engineer.
You are sent a plan to reach the required electricity generation for the year %[1]d in %[2]s.
Analyze the scenario as if speaking directly to the user.

Guidelines:
- Ignore public opinion, keep it scientific.
- Be extremely concise, at most 15 sentences.
- Start with "To reach the required electricity demand for %[1]d in %[2]s, you proposed ..." and name the largest changes in TWh.
- Cover these key aspects in clear sections:
  1) **Feasibility**
  2) **Emissions** (no maths or numbers, just overall facts)
  3) **Variability** (if too variable, mention that storage technology is not yet capable of this)
  4) A precise **Conclusion** with a closed end. Suggest trying again if the plan is poor.`

const promptNotes = `Notes:
- new_twh values are the user's target generation for %[1]d.
- Technologies not listed keep their current production.
- Countries have already almost maximized their practical hydropower potential.
- Relying only on solar or wind is not possible because batteries are not advanced enough.`

// BuildPrompt renders the analysis request for country and summary.
func BuildPrompt(country *catalog.Country, summary *engine.AnalysisSummary) (string, error) {
	if country == nil {
		return "", engine.ErrNilCountry
	}
	if summary == nil {
		return "", fmt.Errorf("summary cannot be nil")
	}

	countryJSON, err := json.MarshalIndent(country, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding country: %w", err)
	}
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding summary: %w", err)
	}

	year := summary.TargetYear
	if year <= 0 {
		year = engine.DefaultTargetYear
	}

	var b strings.Builder
	fmt.Fprintf(&b, promptInstructions, year, country.DisplayName())
	b.WriteString("\n\n----- COUNTRY DATA -----\n")
	b.Write(countryJSON)
	b.WriteString("\n----- USER CHOICES -----\n")
	b.Write(summaryJSON)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, promptNotes, year)
	b.WriteString("\n")
	return b.String(), nil
}
