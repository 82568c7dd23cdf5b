package musicbrainz

// releaseGroupSearchResponse is the raw release-group search result.
type releaseGroupSearchResponse struct {
	ReleaseGroups []releaseGroupResult `json:"release-groups"`
}

type releaseGroupResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Score int    `json:"score"`
}

// releaseGroupResponse is the raw release-group lookup result with tags.
type releaseGroupResponse struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Tags  []tagEntry `json:"tags"`
}

type tagEntry struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}
