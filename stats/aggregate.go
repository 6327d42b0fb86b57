package stats

import (
	"slices"
	"sort"
)

// Histogram is the nationwide count per age band, in BandLabels order.
type Histogram [8]int

// Total returns the sum of all buckets.
func (h Histogram) Total() int {
	return sum(h[:])
}

// Summary holds the whole-dataset totals for one run.
type Summary struct {
	Regions               int       `json:"regions"`
	TotalCases            int       `json:"totalCases"`
	TotalChildVictims     int       `json:"totalChildVictims"`
	TotalWomenVictims     int       `json:"totalWomenVictims"`
	TotalVictims          int       `json:"totalVictims"`
	AvgCasesPerRegion     float64   `json:"avgCasesPerRegion"`
	ChildVictimPercentage float64   `json:"childVictimPercentage"`
	WomenVictimPercentage float64   `json:"womenVictimPercentage"`
	AgeHistogram          Histogram `json:"ageHistogram"`
	// NoData is set when the dataset is empty; every number is then zero.
	NoData bool `json:"noData"`
}

// CategorySummary aggregates the regions that fall into one case category.
type CategorySummary struct {
	Category    string  `json:"category"`
	Regions     int     `json:"regions"`
	TotalCases  int     `json:"totalCases"`
	AvgCases    float64 `json:"avgCases"`
	RegionShare float64 `json:"regionShare"`
}

// SortByCases returns a copy of ds ordered by cases reported, highest first.
// Equal counts keep their input order.
func SortByCases(ds []Record) []Record {
	out := slices.Clone(ds)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CasesReported > out[j].CasesReported
	})
	return out
}

// TopByCases returns the n regions with the most reported cases.
func TopByCases(ds []Record, n int) []Record {
	return head(SortByCases(ds), n)
}

// BottomByCases returns the n regions with the fewest reported cases, fewest first.
func BottomByCases(ds []Record, n int) []Record {
	out := slices.Clone(ds)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CasesReported < out[j].CasesReported
	})
	return head(out, n)
}

// TopByChildPercentage returns the n regions with the highest share of child
// victims, considering only regions that recorded any victim.
func TopByChildPercentage(ds []Record, n int) []Record {
	var out []Record
	for _, r := range ds {
		if r.TotalVictims > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChildPercentage > out[j].ChildPercentage
	})
	return head(out, n)
}

func head(ds []Record, n int) []Record {
	if n < 0 {
		n = 0
	}
	if n > len(ds) {
		n = len(ds)
	}
	return ds[:n:n]
}

// AgeHistogram sums each of the eight age bands across ds.
func AgeHistogram(ds []Record) Histogram {
	var h Histogram
	for _, r := range ds {
		for i, v := range r.Bands() {
			h[i] += v
		}
	}
	return h
}

// Summarize computes the dataset totals. An empty dataset yields zeros and NoData.
func Summarize(ds []Record) Summary {
	s := Summary{Regions: len(ds), NoData: len(ds) == 0}
	for _, r := range ds {
		s.TotalCases += r.CasesReported
		s.TotalChildVictims += r.TotalChildVictims
		s.TotalWomenVictims += r.TotalWomenVictims
		s.TotalVictims += r.TotalVictims
	}
	if len(ds) > 0 {
		s.AvgCasesPerRegion = float64(s.TotalCases) / float64(len(ds))
	}
	s.ChildVictimPercentage = Percentage(s.TotalChildVictims, s.TotalVictims)
	s.WomenVictimPercentage = Percentage(s.TotalWomenVictims, s.TotalVictims)
	s.AgeHistogram = AgeHistogram(ds)
	return s
}

// Categorize groups ds by case category, in the order of labels. Categories
// without regions are left out.
func Categorize(ds []Record, labels [4]string) []CategorySummary {
	var out []CategorySummary
	for _, label := range labels {
		cs := CategorySummary{Category: label}
		for _, r := range ds {
			if r.Category == label {
				cs.Regions++
				cs.TotalCases += r.CasesReported
			}
		}
		if cs.Regions == 0 {
			continue
		}
		cs.AvgCases = float64(cs.TotalCases) / float64(cs.Regions)
		cs.RegionShare = Percentage(cs.Regions, len(ds))
		out = append(out, cs)
	}
	return out
}

// BandShares returns each age band as a percentage of the record's band total.
// A record without victims has all shares zero.
func BandShares(r Record) [8]float64 {
	var shares [8]float64
	bands := r.Bands()
	total := sum(bands[:])
	for i, v := range bands {
		shares[i] = Percentage(v, total)
	}
	return shares
}
