package moveengine_test

import (
	"sync"
	"time"

	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/pkg/filesystem"
)

// recordedEntry is one call to recordingLog.Record.
type recordedEntry struct {
	Kind    moveengine.EventKind
	Message string
	Details moveengine.LogDetails
}

type recordingLog struct {
	mu      sync.Mutex
	entries []recordedEntry
}

func (l *recordingLog) Record(kind moveengine.EventKind, message string, opts ...moveengine.LogOption) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, recordedEntry{
		Kind:    kind,
		Message: message,
		Details: moveengine.ApplyLogOptions(opts),
	})
}

func (l *recordingLog) Entries() []recordedEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]recordedEntry(nil), l.entries...)
}

func (l *recordingLog) Messages() []string {
	var messages []string
	for _, entry := range l.Entries() {
		messages = append(messages, entry.Message)
	}

	return messages
}

func (l *recordingLog) OfKind(kind moveengine.EventKind) []recordedEntry {
	var matched []recordedEntry
	for _, entry := range l.Entries() {
		if entry.Kind == kind {
			matched = append(matched, entry)
		}
	}

	return matched
}

type fakeSettings struct {
	mu          sync.Mutex
	interval    time.Duration
	forceRemove bool
	monitoring  []bool
	gate        *intervalGate
}

// intervalGate holds one PollingInterval call until release is closed.
type intervalGate struct {
	entered chan struct{}
	release chan struct{}
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{interval: 5 * time.Second}
}

func (s *fakeSettings) PollingInterval() time.Duration {
	s.mu.Lock()
	gate := s.gate
	s.gate = nil
	interval := s.interval
	s.mu.Unlock()

	if gate != nil {
		close(gate.entered)
		<-gate.release
	}

	return interval
}

// HoldNextInterval makes the next PollingInterval call close entered and
// wait for release.
func (s *fakeSettings) HoldNextInterval(entered, release chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gate = &intervalGate{entered: entered, release: release}
}

func (s *fakeSettings) ForceRemove() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.forceRemove
}

func (s *fakeSettings) SetMonitoring(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.monitoring = append(s.monitoring, enabled)

	return nil
}

func (s *fakeSettings) SetInterval(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.interval = interval
}

func (s *fakeSettings) MonitoringWrites() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]bool(nil), s.monitoring...)
}

// fakeResolver hands out preconfigured folders or errors per role.
type fakeResolver struct {
	mu      sync.Mutex
	folders map[moveengine.Role]moveengine.Folder
	errs    map[moveengine.Role]error
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		folders: make(map[moveengine.Role]moveengine.Folder),
		errs:    make(map[moveengine.Role]error),
	}
}

func (r *fakeResolver) Set(role moveengine.Role, fs filesystem.FileSystem, root string, closer func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.folders[role] = moveengine.Folder{
		DisplayPath: root,
		Name:        root,
		Handle:      moveengine.NewLocation(fs, root, closer),
	}
	delete(r.errs, role)
}

func (r *fakeResolver) Fail(role moveengine.Role, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errs[role] = err
}

func (r *fakeResolver) Resolve(role moveengine.Role) (moveengine.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.errs[role]; ok {
		return moveengine.Folder{}, err
	}

	return r.folders[role], nil
}

//nolint:gochecknoglobals // Fixed timestamp shared by tests
var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// sampleTree builds the source tree {a.txt (10 bytes), sub/b.txt (20 bytes)}.
func sampleTree() *filesystem.MockFileSystem {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/src/a.txt", []byte("0123456789"), baseTime)
	fs.AddFile("/src/sub/b.txt", []byte("01234567890123456789"), baseTime)
	fs.AddDir("/dst")

	return fs
}
