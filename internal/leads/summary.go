package leads

import "sort"

// OwnerSummary aggregates one salesperson's pipeline.
type OwnerSummary struct {
	Owner         string  `json:"owner"`
	Leads         int     `json:"leads"`
	Upcoming      int     `json:"upcoming"`
	Revenue       float64 `json:"revenue"`
	ExpectedValue float64 `json:"expectedValue"`
}

// Summaries groups leads by owner, largest expected value first.
func Summaries(leads []Lead) []OwnerSummary {
	byOwner := make(map[string]*OwnerSummary)
	for _, l := range leads {
		s, ok := byOwner[l.Owner]
		if !ok {
			s = &OwnerSummary{Owner: l.Owner}
			byOwner[l.Owner] = s
		}
		s.Leads++
		if l.EstCloseDate > UpcomingCutoffSerial {
			s.Upcoming++
		}
		s.Revenue += l.EstRevenue
		s.ExpectedValue += l.Probability * l.EstRevenue
	}

	out := make([]OwnerSummary, 0, len(byOwner))
	for _, s := range byOwner {
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ExpectedValue != out[j].ExpectedValue {
			return out[i].ExpectedValue > out[j].ExpectedValue
		}
		return out[i].Owner < out[j].Owner
	})
	return out
}

// Owners returns the distinct lead owners in first-seen order.
func Owners(leads []Lead) []string {
	seen := make(map[string]struct{}, len(leads))
	out := make([]string, 0)
	for _, l := range leads {
		if _, ok := seen[l.Owner]; ok {
			continue
		}
		seen[l.Owner] = struct{}{}
		out = append(out, l.Owner)
	}
	return out
}
