package analytics

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey names a sortable content-table column.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByPlatform SortKey = "platform"
	SortByType     SortKey = "type"
	SortByDate     SortKey = "date"
	SortByCampaign SortKey = "campaign"
)

// ParseSortKey maps a query-string value to a sort key, defaulting to
// publish date.
func ParseSortKey(raw string) SortKey {
	switch SortKey(raw) {
	case SortByName, SortByPlatform, SortByType, SortByDate, SortByCampaign:
		return SortKey(raw)
	default:
		return SortByDate
	}
}

// SortContent sorts rows in place by the given column. String columns
// use locale-aware collation, the date column compares
// chronologically, and rows with an absent value sort last regardless
// of direction. The sort is stable.
func SortContent(rows []ContentRow, key SortKey, desc bool) {
	coll := collate.New(language.English)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]

		if key == SortByDate {
			if a.PostDate.IsZero() != b.PostDate.IsZero() {
				return b.PostDate.IsZero()
			}
			if desc {
				return a.PostDate.After(b.PostDate)
			}
			return a.PostDate.Before(b.PostDate)
		}

		av, bv := sortValue(a, key), sortValue(b, key)
		if (av == "") != (bv == "") {
			return bv == ""
		}
		cmp := coll.CompareString(av, bv)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func sortValue(row ContentRow, key SortKey) string {
	switch key {
	case SortByName:
		return row.Name
	case SortByPlatform:
		return string(row.Platform)
	case SortByType:
		return row.Type
	case SortByCampaign:
		return row.Campaign
	default:
		return row.Date
	}
}
