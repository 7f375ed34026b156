package bot

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/EgorLis/Teamsbot/internal/teams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSessionQueueKeepsOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		q   sessionQueue
		wg  sync.WaitGroup
		mu  sync.Mutex
		got []int
	)
	want := make([]int, 50)
	for i := range want {
		want[i] = i
		wg.Add(1)
		q.Go("g1", func() {
			defer wg.Done()
			// ранние задачи не должны обгонять поздние, даже если спят дольше
			time.Sleep(time.Duration(50-i) * 10 * time.Microsecond)
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	wg.Wait()

	assert.Equal(t, want, got)
	q.mu.Lock()
	defer q.mu.Unlock()
	assert.Empty(t, q.tails)
}

func TestSessionQueueOtherSessionsDontWait(t *testing.T) {
	defer goleak.VerifyNone(t)

	var q sessionQueue
	release := make(chan struct{})
	blocked := make(chan struct{})
	other := make(chan struct{})

	q.Go("g1", func() { <-release; close(blocked) })
	q.Go("g2", func() { close(other) })

	select {
	case <-other:
	case <-time.After(2 * time.Second):
		t.Fatal("g2 waited for g1")
	}
	close(release)
	<-blocked
}

func TestConcurrentCommandsInOneSession(t *testing.T) {
	glued := "Teams:\nDudes: c, d\nBuds: a, b\n"
	unglued := handle(t, newTestBot(t), "g1", "!teams roll 2 a b c d")

	b := newTestBot(t)
	var wg sync.WaitGroup
	replies := make([]string, 40)
	for i := range replies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text := "!teams roll 2 a b c d"
			switch i % 4 {
			case 1:
				text = "!teams glue a b"
			case 3:
				text = "!teams unglue"
			}
			reply, ok := b.HandleCommand(cmd("g1", text))
			if ok && i%2 == 0 {
				replies[i] = reply
			}
		}()
	}
	wg.Wait()

	for i := 0; i < len(replies); i += 2 {
		assert.Contains(t, []string{glued, unglued}, replies[i], fmt.Sprintf("roll #%d", i))
	}
	// последний бросок записан целиком
	reroll := b.Reroll("g1", teams.PlainMention)
	require.Contains(t, []string{glued, unglued}, reroll)
}

func TestSessionLocksAreReleased(t *testing.T) {
	var l sessionLocks
	l.lock("g1")()
	unlock := l.lock("g1")
	done := make(chan struct{})
	go func() {
		l.lock("g2")()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("g2 waited for g1")
	}
	unlock()
}
