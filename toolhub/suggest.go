package toolhub

import "sort"

// suggestCapabilities ranks known by Damerau-Levenshtein distance to target
// and returns the top n closest matches (spec §4.6.4 "suggestions:[...top
// 3]"), the same string-similarity family the teacher uses for keyword-search
// relevance (runtime/registry/search.go ComputeKeywordRelevance), applied
// here to capability names instead of search-result text.
func suggestCapabilities(target string, known []string, n int) []string {
	type scored struct {
		name string
		dist int
	}
	scoredList := make([]scored, 0, len(known))
	for _, k := range known {
		scoredList = append(scoredList, scored{name: k, dist: damerauLevenshtein(target, k)})
	}
	sort.SliceStable(scoredList, func(i, j int) bool {
		if scoredList[i].dist != scoredList[j].dist {
			return scoredList[i].dist < scoredList[j].dist
		}
		return scoredList[i].name < scoredList[j].name
	})
	if n > len(scoredList) {
		n = len(scoredList)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = scoredList[i].name
	}
	return out
}

// damerauLevenshtein computes the optimal-string-alignment edit distance
// between a and b: insertions, deletions, substitutions, and adjacent
// transpositions each cost 1.
func damerauLevenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}

	d := make([][]int, n+1)
	for i := range d {
		d[i] = make([]int, m+1)
		d[i][0] = i
	}
	for j := 0; j <= m; j++ {
		d[0][j] = j
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d[i][j] = min3(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := d[i-2][j-2] + 1; t < d[i][j] {
					d[i][j] = t
				}
			}
		}
	}
	return d[n][m]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
