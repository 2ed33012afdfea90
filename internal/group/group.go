// Package group partitions fingerprinted candidates into duplicate
// groups and picks the member of each group to keep.
package group

import (
	"sort"

	"github.com/dupetools/dupes/internal/fingerprint"
	"github.com/dupetools/dupes/internal/types"
)

// Group is a set of files judged equivalent. Members stay in listing
// order; Keep indexes the member that survives deletion, -1 until a keep
// policy has been applied.
type Group struct {
	Members []types.Candidate
	Keep    int
}

// Duplicates returns the members that are not kept. With no keep index
// set yet, everything after the first member counts.
func (g *Group) Duplicates() []types.Candidate {
	keep := g.Keep
	if keep < 0 {
		keep = 0
	}
	dupes := make([]types.Candidate, 0, len(g.Members)-1)
	for i, m := range g.Members {
		if i != keep {
			dupes = append(dupes, m)
		}
	}
	return dupes
}

// ByDigest groups fingerprints by exact digest equality. Members are
// re-sorted into listing order, and groups come back ordered by their
// first member, so the result is identical no matter how many workers
// produced the fingerprints or in which order they finished. The second
// return value counts fingerprints whose digest matched nothing else;
// in hash mode those are the size collisions.
func ByDigest(fps []fingerprint.Fingerprint) ([]Group, int) {
	byDigest := make(map[string][]types.Candidate, len(fps))
	for _, fp := range fps {
		byDigest[fp.Digest] = append(byDigest[fp.Digest], fp.Candidate)
	}

	var groups []Group
	uniques := 0
	for _, members := range byDigest {
		if len(members) < 2 {
			uniques += len(members)
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].Index < members[j].Index
		})
		groups = append(groups, Group{Members: members, Keep: -1})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Members[0].Index < groups[j].Members[0].Index
	})

	return groups, uniques
}

// BySimilarity clusters image fingerprints. Candidates are visited in
// listing order; each not-yet-grouped candidate anchors a new group and
// absorbs every later ungrouped candidate whose score against the anchor
// meets the threshold. Matching is against the anchor only, not between
// members, so two files that each resemble the anchor but not each other
// still share a group. That approximation keeps membership stable and
// cheap; full transitive closure would change observable results.
// Singleton groups are dropped.
func BySimilarity(fps []fingerprint.Fingerprint, threshold int) ([]Group, error) {
	ordered := make([]fingerprint.Fingerprint, len(fps))
	copy(ordered, fps)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Candidate.Index < ordered[j].Candidate.Index
	})

	grouped := make([]bool, len(ordered))
	var groups []Group

	for i, anchor := range ordered {
		if grouped[i] {
			continue
		}
		members := []types.Candidate{anchor.Candidate}

		for j := i + 1; j < len(ordered); j++ {
			if grouped[j] {
				continue
			}
			score, err := fingerprint.Score(anchor.Image, ordered[j].Image)
			if err != nil {
				return nil, err
			}
			if score >= float64(threshold) {
				members = append(members, ordered[j].Candidate)
				grouped[j] = true
			}
		}

		if len(members) >= 2 {
			groups = append(groups, Group{Members: members, Keep: -1})
		}
	}

	return groups, nil
}
