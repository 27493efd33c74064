package scanner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// LineSource reads payloads from a keyboard-wedge QR reader, which types each
// decoded code followed by a newline.
type LineSource struct {
	r io.Reader

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
	dry     chan struct{}
	dryOnce sync.Once
	readErr error
}

func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: r, dry: make(chan struct{})}
}

func (l *LineSource) Start(ctx context.Context, _ Options, onDecode func(string)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return errors.New("line source already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.running = true
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	lines := make(chan string)

	stop := l.stop
	// The reader goroutine may stay blocked in Read after Stop; it exits on
	// the next line or EOF.
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(l.r)
		for sc.Scan() {
			text := strings.TrimSpace(sc.Text())
			if text == "" {
				continue
			}
			select {
			case lines <- text:
			case <-stop:
				return
			}
		}
		l.mu.Lock()
		l.readErr = sc.Err()
		l.mu.Unlock()
	}()

	done := l.done
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case text, ok := <-lines:
				if !ok {
					l.dryOnce.Do(func() { close(l.dry) })
					return
				}
				onDecode(text)
			}
		}
	}()
	return nil
}

// Stop waits for any in-flight onDecode call to return.
func (l *LineSource) Stop() error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return nil
	}
	l.running = false
	close(l.stop)
	done := l.done
	l.mu.Unlock()

	<-done

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readErr
}

// Done is closed once the reader is exhausted.
func (l *LineSource) Done() <-chan struct{} { return l.dry }
