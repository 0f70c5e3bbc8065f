package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler   *AuthHandler
	UserHandler   *UserHandler
	AdminHandler  *AdminHandler
	CourseHandler *CourseHandler
	HealthHandler *HealthHandler
}
