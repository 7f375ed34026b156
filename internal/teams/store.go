package teams

import "sync"

// sessionMap хранит значение на каждую сессию. Карта защищена коротким
// мьютексом, а каждое значение — своим, так что команды из разных сессий
// не ждут друг друга.
type sessionMap[T any] struct {
	mu sync.Mutex
	m  map[SessionKey]*sessionEntry[T]
}

type sessionEntry[T any] struct {
	mu  sync.Mutex
	val T
}

// entry возвращает запись сессии; при create=false отсутствующая запись
// не создаётся и возвращается nil.
func (s *sessionMap[T]) entry(key SessionKey, create bool) *sessionEntry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[key]
	if !ok && create {
		if s.m == nil {
			s.m = make(map[SessionKey]*sessionEntry[T])
		}
		e = &sessionEntry[T]{}
		s.m[key] = e
	}
	return e
}

// update выполняет fn под замком сессии, создавая запись при необходимости.
func (s *sessionMap[T]) update(key SessionKey, fn func(*T)) {
	e := s.entry(key, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.val)
}

// view выполняет fn под замком сессии; false, если сессии ещё нет.
func (s *sessionMap[T]) view(key SessionKey, fn func(T)) bool {
	e := s.entry(key, false)
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.val)
	return true
}
