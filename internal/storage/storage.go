package storage

// NewRepository создает репозитории с общими зависимостями
func NewRepository(deps *RepositoryDependencies) *Repository {
	brigades := NewBrigadeRepository(deps)
	workCenters := NewWorkCenterRepository(deps)
	products := NewProductRepository(deps)
	tasks := NewTaskRepository(deps, brigades, workCenters, products)

	return &Repository{
		Brigade:    brigades,
		WorkCenter: workCenters,
		Task:       tasks,
		Product:    products,
	}
}
