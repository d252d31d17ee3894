// Package textsim scores how closely a transcript matches a reference text.
//
// The score is a character-level sequence-alignment ratio: matching blocks
// are found by recursively locating the longest common contiguous substring,
// and the score is 200·M/(len(a)+len(b)) where M is the total matched rune
// count. Identical strings score 100, disjoint strings score near 0, and an
// empty side scores exactly 0.
//
// This is recitation fidelity, not content correctness: paraphrase,
// reordering beyond common substrings, and synonyms all lower the score.
package textsim

// match is a common block: a[ai:ai+size] == b[bi:bi+size].
type match struct {
	ai, bi, size int
}

// Ratio returns the 0–100 similarity between a reference string and a
// hypothesis string. Either side empty yields 0.
func Ratio(ref, hyp string) float64 {
	a, b := []rune(ref), []rune(hyp)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	matched := 0
	for _, m := range matchingBlocks(a, b) {
		matched += m.size
	}
	return 200 * float64(matched) / float64(len(a)+len(b))
}

// matchingBlocks decomposes a and b into maximal matching blocks by
// recursively splitting around the longest match. No junk heuristics:
// every rune participates in matching.
func matchingBlocks(a, b []rune) []match {
	// Index b's runes once; longestMatch walks a against it.
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}

	var blocks []match
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(a, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if m.size == 0 {
			continue
		}
		blocks = append(blocks, m)
		queue = append(queue,
			span{s.alo, m.ai, s.blo, m.bi},
			span{m.ai + m.size, s.ahi, m.bi + m.size, s.bhi},
		)
	}
	return blocks
}

// longestMatch finds the longest block where a[alo:ahi] and b[blo:bhi]
// agree. Of equally long matches it prefers the one starting earliest in a,
// then earliest in b.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) match {
	best := match{ai: alo, bi: blo}

	// j2len maps j in b to the length of the match ending at a[i], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.size {
				best = match{ai: i - k + 1, bi: j - k + 1, size: k}
			}
		}
		j2len = next
	}
	return best
}
