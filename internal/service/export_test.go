package service

import "taskBoard/internal/session"

// CacheSession открывает тестам сессию, с которой работает кэш
func (s *Service) CacheSession() session.Session {
	ws, err := s.workspace()
	if err != nil {
		return session.Session{}
	}
	return ws.cache.Session()
}
