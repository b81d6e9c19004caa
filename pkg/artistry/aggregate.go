package artistry

// dateLayout is the calendar-date form views expose for careerStartDate.
const dateLayout = "2006-01-02"

// BuildView shapes one raw joined row into the normalized artist view. It is
// pure and deterministic: the rating is 0 when no ratings exist, the
// social-network list is deduplicated preserving input order (never nil), and
// the career start date is flattened to a calendar-date string or nil.
func BuildView(row ArtistRow) ArtistView {
	view := ArtistView{
		ID:             row.ID,
		Name:           row.Name,
		StageName:      row.StageName,
		AlbumCount:     row.AlbumCount,
		Label:          row.Label,
		Publisher:      row.Publisher,
		Image:          row.Image,
		Rating:         row.Rating,
		RatingCount:    row.RatingCount,
		SocialNetworks: dedupeURLs(row.SocialNetworks),
	}
	if row.RatingCount == 0 {
		view.Rating = 0
	}
	if row.CareerStartDate != nil {
		d := row.CareerStartDate.Format(dateLayout)
		view.CareerStartDate = &d
	}
	return view
}

// BuildViews shapes a batch of rows, preserving their order.
func BuildViews(rows []ArtistRow) []ArtistView {
	views := make([]ArtistView, 0, len(rows))
	for _, row := range rows {
		views = append(views, BuildView(row))
	}
	return views
}

func dedupeURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
