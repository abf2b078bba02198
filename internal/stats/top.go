package stats

import (
	"sort"

	"github.com/hhushhas/fingerpain/internal/model"
)

// otherDomain is the bucket for browser minutes without page context.
const otherDomain = "Other"

// TopDomains merges per-browser domain breakdowns and returns the n busiest
// sites. Minutes without page context are left out.
func TopDomains(apps []model.AppStats, n int) []model.DomainStats {
	if n <= 0 {
		return nil
	}
	merged := map[string]*model.DomainStats{}
	for _, app := range apps {
		for _, d := range app.Domains {
			if d.Domain == otherDomain {
				continue
			}
			m, ok := merged[d.Domain]
			if !ok {
				m = &model.DomainStats{Domain: d.Domain}
				merged[d.Domain] = m
			}
			m.Chars += d.Chars
			m.Words += d.Words
		}
	}
	out := make([]model.DomainStats, 0, len(merged))
	for _, d := range merged {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Chars == out[j].Chars {
			return out[i].Domain < out[j].Domain
		}
		return out[i].Chars > out[j].Chars
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
