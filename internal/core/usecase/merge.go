package usecase

import (
	"sort"
	"strings"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
)

// MergeStats складывает количества и усредняет средние партиций.
// По умолчанию среднее невзвешенное: каждая партиция с данными дает один голос.
// Партиции без строк или с NULL-средним не участвуют. weighted=true взвешивает
// по числу непустых значений поля.
func MergeStats(partials []domain.PartitionStats, weighted bool) domain.Stats {
	var total int64
	for _, p := range partials {
		total += p.Count
	}

	return domain.Stats{
		Total: total,
		AvgPrice: mergeAverage(partials, weighted, func(p domain.PartitionStats) (*float64, int64) {
			return p.AvgPrice, p.PriceCount
		}),
		AvgSize: mergeAverage(partials, weighted, func(p domain.PartitionStats) (*float64, int64) {
			return p.AvgSize, p.SizeCount
		}),
		AvgRooms: mergeAverage(partials, weighted, func(p domain.PartitionStats) (*float64, int64) {
			return p.AvgRooms, p.RoomsCount
		}),
	}
}

type weightedValue struct {
	value  float64
	weight float64
}

func mergeAverage(partials []domain.PartitionStats, weighted bool, pick func(domain.PartitionStats) (*float64, int64)) float64 {
	contributions := make([]weightedValue, 0, len(partials))
	for _, p := range partials {
		avg, n := pick(p)
		if p.Count == 0 || avg == nil {
			continue
		}
		w := 1.0
		if weighted {
			if n <= 0 {
				continue
			}
			w = float64(n)
		}
		contributions = append(contributions, weightedValue{value: *avg, weight: w})
	}
	return meanOf(contributions)
}

// meanOf сортирует слагаемые, чтобы результат не зависел от порядка партиций до последнего бита
func meanOf(values []weightedValue) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].value != values[j].value {
			return values[i].value < values[j].value
		}
		return values[i].weight < values[j].weight
	})

	var sum, weight float64
	for _, v := range values {
		sum += v.value * v.weight
		weight += v.weight
	}
	return sum / weight
}

// MergeTrend объединяет помесячные средние всех партиций: для каждого месяца
// берется невзвешенное среднее непустых значений, месяцы идут по возрастанию.
func MergeTrend(partials [][]domain.MonthlyAverage) domain.Chart[float64] {
	byMonth := make(map[string][]weightedValue)
	for _, partial := range partials {
		for _, m := range partial {
			if m.AvgPrice == nil || m.Month == "" {
				continue
			}
			byMonth[m.Month] = append(byMonth[m.Month], weightedValue{value: *m.AvgPrice, weight: 1})
		}
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	// YYYY-MM сортируется лексикографически так же, как хронологически
	sort.Strings(months)

	chart := domain.Chart[float64]{Labels: months, Series: make([]float64, 0, len(months))}
	for _, month := range months {
		chart.Series = append(chart.Series, meanOf(byMonth[month]))
	}
	return chart
}

// ExtractCity - часть адреса до первой запятой без пробелов по краям
func ExtractCity(address string) string {
	city, _, _ := strings.Cut(address, ",")
	return strings.TrimSpace(city)
}

// MergeCityCounts суммирует количества по городу, выделенному из адреса.
// Пустые города отбрасываются. Сортировка: по убыванию количества, затем по имени.
func MergeCityCounts(partials [][]domain.AddressCount) domain.Chart[int64] {
	counts := make(map[string]int64)
	for _, partial := range partials {
		for _, ac := range partial {
			if ac.Address == nil {
				continue
			}
			city := ExtractCity(*ac.Address)
			if city == "" {
				continue
			}
			counts[city] += ac.Count
		}
	}

	cities := make([]string, 0, len(counts))
	for city := range counts {
		cities = append(cities, city)
	}
	sort.Slice(cities, func(i, j int) bool {
		if counts[cities[i]] != counts[cities[j]] {
			return counts[cities[i]] > counts[cities[j]]
		}
		return cities[i] < cities[j]
	})

	chart := domain.Chart[int64]{Labels: cities, Series: make([]int64, 0, len(cities))}
	for _, city := range cities {
		chart.Series = append(chart.Series, counts[city])
	}
	return chart
}

// collectByType строит по одному значению на партицию в порядке реестра
func collectByType[T int64 | float64](results []partitionResult[domain.PartitionStats], pick func(domain.PartitionStats) T) domain.Chart[T] {
	chart := domain.Chart[T]{
		Labels: make([]string, 0, len(results)),
		Series: make([]T, 0, len(results)),
	}
	for _, r := range results {
		chart.Labels = append(chart.Labels, r.partition.Label)
		chart.Series = append(chart.Series, pick(r.value))
	}
	return chart
}
