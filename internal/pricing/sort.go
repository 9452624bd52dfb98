package pricing

import (
	"sort"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// SortByPrice упорядочивает агрегаты по убыванию цены. Равные сохраняют порядок.
func SortByPrice(computers []domain.Computer) {
	sort.SliceStable(computers, func(i, j int) bool {
		return computers[i].Price().GreaterThan(computers[j].Price())
	})
}
