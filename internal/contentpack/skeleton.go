package contentpack

import "site-pipeline/internal/models"

// MergeSkeleton combines the strategist's pages with user-authored ones. A
// user page replaces the strategy page with the same normalized slug in place;
// user pages with new slugs are appended. Slugs in the result are normalized.
func MergeSkeleton(strategyPages, userPages []models.PageSkeleton) []models.PageSkeleton {
	out := make([]models.PageSkeleton, 0, len(strategyPages)+len(userPages))
	index := make(map[string]int, len(strategyPages))

	for _, p := range strategyPages {
		p.Slug = models.NormalizeSlug(p.Slug)
		if _, dup := index[p.Slug]; dup {
			continue
		}
		index[p.Slug] = len(out)
		out = append(out, p)
	}

	for _, p := range userPages {
		p.Slug = models.NormalizeSlug(p.Slug)
		if i, ok := index[p.Slug]; ok {
			if p.Title == "" {
				p.Title = out[i].Title
			}
			if p.Purpose == "" {
				p.Purpose = out[i].Purpose
			}
			if len(p.Sections) == 0 {
				p.Sections = out[i].Sections
			}
			out[i] = p
			continue
		}
		index[p.Slug] = len(out)
		out = append(out, p)
	}

	return out
}
