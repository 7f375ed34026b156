package bot

import (
	"sync"

	"github.com/EgorLis/Teamsbot/internal/teams"
)

// sessionLocks — мьютекс на сессию: команда целиком (запись броска, чтение
// клея, разбиение) выполняется атомарно относительно других команд этой же
// сессии.
type sessionLocks struct {
	mu sync.Mutex
	m  map[teams.SessionKey]*sync.Mutex
}

func (l *sessionLocks) lock(key teams.SessionKey) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[teams.SessionKey]*sync.Mutex)
	}
	mu, ok := l.m[key]
	if !ok {
		mu = &sync.Mutex{}
		l.m[key] = mu
	}
	l.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// sessionQueue выполняет задачи одной сессии строго в порядке Go, каждую
// в своей горутине; задачи разных сессий друг друга не ждут.
type sessionQueue struct {
	mu    sync.Mutex
	tails map[teams.SessionKey]chan struct{}
}

func (q *sessionQueue) Go(key teams.SessionKey, fn func()) {
	done := make(chan struct{})

	q.mu.Lock()
	if q.tails == nil {
		q.tails = make(map[teams.SessionKey]chan struct{})
	}
	prev := q.tails[key]
	q.tails[key] = done
	q.mu.Unlock()

	go func() {
		defer func() {
			close(done)
			q.mu.Lock()
			if q.tails[key] == done {
				delete(q.tails, key)
			}
			q.mu.Unlock()
		}()
		if prev != nil {
			<-prev
		}
		fn()
	}()
}
