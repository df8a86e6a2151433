package contextkeys

type contextKey string

const (
	UserIDKey     contextKey = "UserID"
	UserRoleKey   contextKey = "UserRole"
	UserCitiesKey contextKey = "UserCities"
	UserLoginKey  contextKey = "UserLogin"
)
