package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	RegisterHandler(RecomputePharmacyStatsTaskName, RecomputePharmacyStatsHandler)
	RegisterHandler(SendOrderEmailTaskName, SendOrderEmailHandler)
}
