package progrock

import (
	"errors"
	"sync"

	"github.com/vito/progrock"
	"google.golang.org/protobuf/proto"
)

// Feed reads the status updates recorded after it was subscribed.
// Updates queue in a progrock pipe until read. ReadStatus reports false once the
// feed is closed and drained.
type Feed struct {
	progrock.Reader

	w      progrock.Writer
	fanout *fanout
	once   sync.Once
	err    error
}

// Close stops the feed from receiving updates.
func (f *Feed) Close() error {
	f.once.Do(func() {
		f.fanout.leave(f)
		f.err = f.w.Close()
	})
	return f.err
}

// fanout writes every update to the tape and a snapshot of it to the subscribed feeds.
// Recorders keep mutating their vertices after writing them, so feeds get a clone taken
// while the writer still holds them.
type fanout struct {
	tape progrock.Writer

	mu    sync.Mutex
	feeds []*Feed
}

func (f *fanout) subscribe() *Feed {
	r, w := progrock.Pipe()
	feed := &Feed{Reader: r, w: w, fanout: f}

	f.mu.Lock()
	f.feeds = append(f.feeds, feed)
	f.mu.Unlock()
	return feed
}

func (f *fanout) leave(feed *Feed) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.feeds {
		if existing == feed {
			f.feeds = append(f.feeds[:i], f.feeds[i+1:]...)
			return
		}
	}
}

func (f *fanout) WriteStatus(update *progrock.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.feeds) == 0 {
		return f.tape.WriteStatus(update)
	}

	snapshot, _ := proto.Clone(update).(*progrock.StatusUpdate)
	pipes := make(progrock.MultiWriter, 0, len(f.feeds))
	for _, feed := range f.feeds {
		pipes = append(pipes, feed.w)
	}
	return errors.Join(f.tape.WriteStatus(update), pipes.WriteStatus(snapshot))
}

func (f *fanout) Close() error {
	f.mu.Lock()
	feeds := f.feeds
	f.feeds = nil
	f.mu.Unlock()

	errs := make([]error, 0, len(feeds)+1)
	for _, feed := range feeds {
		errs = append(errs, feed.Close())
	}
	errs = append(errs, f.tape.Close())
	return errors.Join(errs...)
}
