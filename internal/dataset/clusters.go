package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const highRelevanceClusterSize = 3

// annotateAbstractionClusters groups questions sharing a non-null
// abstractionClusterId and stamps every member with the group's id, label,
// size, and the ids of its peers. Even a group of one gets annotated.
func annotateAbstractionClusters(set *Set) {
	groups := make(map[string][]string)
	for _, id := range set.order {
		q := set.byID[id]
		if q.AbstractionClusterID == nil {
			continue
		}
		key := formatClusterID(*q.AbstractionClusterID)
		groups[key] = append(groups[key], q.ID)
	}

	for key, members := range groups {
		label := "Cluster " + key
		high := len(members) >= highRelevanceClusterSize
		for _, id := range members {
			q := set.byID[id]
			q.ClusterID = strptr(key)
			q.ClusterLabel = strptr(label)
			q.ClusterSize = len(members)
			q.ClusterRelatedIDs = othersOf(members, id)
			q.IsHighRelevanceCluster = high
		}
	}
}

// annotateImageClusters matches asset keys to questions by id substring,
// unions the matches into each question's imageFiles, then links questions
// that share any asset. Runs only when an asset index is present.
func annotateImageClusters(set *Set, assetKeys []string) {
	if len(assetKeys) == 0 {
		return
	}

	assetQuestions := make(map[string][]string)
	for _, id := range set.order {
		q := set.byID[id]
		for _, key := range assetKeys {
			if !strings.Contains(key, q.ID) {
				continue
			}
			if !containsString(q.ImageFiles, key) {
				q.ImageFiles = append(q.ImageFiles, key)
			}
			assetQuestions[key] = append(assetQuestions[key], q.ID)
		}
	}

	for _, id := range set.order {
		q := set.byID[id]
		related := make(map[string]bool)
		for _, key := range q.ImageFiles {
			for _, other := range assetQuestions[key] {
				if other != q.ID {
					related[other] = true
				}
			}
		}
		if len(related) == 0 {
			continue
		}
		ids := make([]string, 0, len(related))
		for other := range related {
			ids = append(ids, other)
		}
		sort.Strings(ids)
		q.ImageClusterQuestionIDs = ids
		q.ImageClusterSize = len(ids) + 1
		if q.ImageClusterSize > 1 {
			q.ImageClusterLabel = strptr(fmt.Sprintf("Bildgruppe (%d Fragen)", q.ImageClusterSize))
		}
	}
}

// formatClusterID renders a numeric cluster id without a trailing ".0" so
// 7 and 7.0 land in the same group.
func formatClusterID(id float64) string {
	return strconv.FormatFloat(id, 'f', -1, 64)
}

func othersOf(members []string, self string) []string {
	out := make([]string, 0, len(members)-1)
	for _, m := range members {
		if m != self {
			out = append(out, m)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func strptr(s string) *string { return &s }
