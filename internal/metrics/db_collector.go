package metrics

import "database/sql"

type statser interface {
	Stats() sql.DBStats
}

// RecordDBStats updates the connection gauges from the pool statistics.
func RecordDBStats(db statser) {
	stats := db.Stats()

	DBConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	DBConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	DBConnections.WithLabelValues("idle").Set(float64(stats.Idle))
	DBConnections.WithLabelValues("max").Set(float64(stats.MaxOpenConnections))
}
