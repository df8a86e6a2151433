package constants

// --- РОЛИ (значения совпадают с claims в JWT) ---
const (
	RoleMaster   = "master"
	RoleDirector = "director"
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Флаг принудительной деавторизации.
	// Формат: force_logout:<role>:<userID> -> "1"
	CacheKeyForceLogout = "force_logout:%s:%d"
)
