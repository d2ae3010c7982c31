package conflicts

import "github.com/m04kA/SMC-SpaceBookingService/internal/domain"

// ClusterActive группирует активные для синхронизации бронирования
// (pending, confirmed, external) в кластеры транзитивно пересекающихся.
// Возвращаются только кластеры размером больше одного — именно они
// означают конфликт, обнаруженный после импорта внешнего календаря.
func ClusterActive(bookings []*domain.Booking) [][]*domain.Booking {
	active := make([]*domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.IsSyncActive() {
			active = append(active, b)
		}
	}

	visited := make([]bool, len(active))
	clusters := make([][]*domain.Booking, 0)

	for i := range active {
		if visited[i] {
			continue
		}

		cluster := []*domain.Booking{active[i]}
		visited[i] = true

		// обход в ширину по графу пересечений
		for cursor := 0; cursor < len(cluster); cursor++ {
			for j := range active {
				if visited[j] {
					continue
				}
				if cluster[cursor].Overlaps(active[j]) {
					visited[j] = true
					cluster = append(cluster, active[j])
				}
			}
		}

		if len(cluster) > 1 {
			clusters = append(clusters, cluster)
		}
	}

	return clusters
}
