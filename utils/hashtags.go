package utils

import (
	"sort"
	"strings"
)

// TagCount is a hashtag and how many times it appeared.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ExtractTags splits a free-form hashtag string ("#art, cool #sketch") into bare tags.
// Spaces count as separators, '#' is dropped and empty pieces are skipped.
func ExtractTags(hashtags string) []string {
	var tags []string
	for _, piece := range strings.Split(strings.ReplaceAll(hashtags, " ", ","), ",") {
		tag := strings.TrimSpace(strings.ReplaceAll(piece, "#", ""))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// TopTags counts tags across all hashtag strings and returns the n most frequent.
// Ties keep the order in which the tags first appeared.
func TopTags(hashtagStrings []string, n int) []TagCount {
	index := map[string]int{}
	var counts []TagCount
	for _, s := range hashtagStrings {
		for _, tag := range ExtractTags(s) {
			if i, ok := index[tag]; ok {
				counts[i].Count++
				continue
			}
			index[tag] = len(counts)
			counts = append(counts, TagCount{Tag: tag, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	if counts == nil {
		counts = []TagCount{}
	}
	return counts
}
